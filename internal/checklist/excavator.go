package checklist

// Excavator returns the P2H catalogue for excavator units, matching form
// ALBI-FM-OPR-03. Item ids are stable keys; labels are printed verbatim on
// the exported report.
func Excavator() Definition {
	return Definition{Sections: []Section{
		{
			ID:    "mesin",
			Title: "Mesin",
			Items: []Item{
				{ID: "oli_mesin", Label: "Oli Mesin", Kind: KindBoolean, Required: true},
				{ID: "v_belt", Label: "V-Belt Kipas", Kind: KindBoolean, Required: true},
				{ID: "radiator", Label: "Radiator", Kind: KindBoolean, Required: true},
				{ID: "hose_radiator", Label: "Hose Radiator", Kind: KindBoolean, Required: true},
				{ID: "fungsi_gas", Label: "Fungsi Gas", Kind: KindBoolean, Required: true},
				{ID: "tangki_solar", Label: "Tangki Solar", Kind: KindBoolean, Required: true},
			},
		},
		{
			ID:    "undercarriage",
			Title: "Under Carriage",
			Items: []Item{
				{ID: "shoe", Label: "Shoe", Kind: KindBoolean, Required: true},
				{ID: "track_link", Label: "Track Link", Kind: KindBoolean, Required: true},
				{ID: "track_tensioner", Label: "Track Tensioner", Kind: KindBoolean, Required: true},
				{ID: "idler", Label: "Idler", Kind: KindBoolean, Required: true},
				{ID: "upper_roller", Label: "Upper Roller", Kind: KindBoolean, Required: true},
				{ID: "lower_roller", Label: "Lower Roller", Kind: KindBoolean, Required: true},
				{ID: "motor_travel", Label: "Motor Travel", Kind: KindBoolean, Required: true},
				{ID: "reduction_gear", Label: "Reduction Gear Travel", Kind: KindBoolean, Required: true},
				{ID: "oil_motor_travel", Label: "Oil Motor Travel", Kind: KindBoolean, Required: true},
				{ID: "hose_travel", Label: "Hose Travel", Kind: KindBoolean, Required: true},
				{ID: "final_drive_segment", Label: "Final Drive / Segment", Kind: KindBoolean, Required: true},
				{ID: "tangga_naik", Label: "Tangga Naik", Kind: KindBoolean, Required: true},
			},
		},
		{
			ID:    "attachment",
			Title: "Attachment",
			Items: []Item{
				{ID: "boom", Label: "Boom", Kind: KindBoolean, Required: true},
				{ID: "bushing_boom", Label: "Bushing Boom", Kind: KindBoolean, Required: true},
				{ID: "pin_boom", Label: "Pin Boom", Kind: KindBoolean, Required: true},
				{ID: "seal_boom", Label: "Seal Boom", Kind: KindBoolean, Required: true},
				{ID: "arm", Label: "Arm", Kind: KindBoolean, Required: true},
				{ID: "bushing_arm", Label: "Bushing Arm", Kind: KindBoolean, Required: true},
				{ID: "pin_arm", Label: "Pin Arm", Kind: KindBoolean, Required: true},
				{ID: "seal_arm", Label: "Seal Arm", Kind: KindBoolean, Required: true},
				{ID: "link_bucket", Label: "Link Bucket", Kind: KindBoolean, Required: true},
				{ID: "bucket", Label: "Bucket", Kind: KindBoolean, Required: true},
				{ID: "teeth_bucket", Label: "Teeth Bucket", Kind: KindBoolean, Required: true},
				{ID: "pin_bucket", Label: "Pin Bucket", Kind: KindBoolean, Required: true},
				{ID: "bushing_bucket", Label: "Bushing Bucket", Kind: KindBoolean, Required: true},
				{ID: "adapter_bucket", Label: "Adapter Bucket", Kind: KindBoolean, Required: true},
				{ID: "side_cutter_bucket", Label: "Side Cutter Bucket", Kind: KindBoolean, Required: true},
			},
		},
		{
			ID:    "cabin",
			Title: "Cabin",
			Items: []Item{
				{ID: "kaca_spion", Label: "Kaca Spion", Kind: KindBoolean, Required: true},
				{ID: "kaca_pintu", Label: "Kaca Pintu Kabin", Kind: KindBoolean, Required: true},
				{ID: "kaca_depan", Label: "Kaca Depan", Kind: KindBoolean, Required: true},
				{ID: "radio", Label: "Radio", Kind: KindBoolean, Required: true},
				{ID: "ac", Label: "AC", Kind: KindBoolean, Required: true},
				{ID: "karpet_kabin", Label: "Karpet Kabin", Kind: KindBoolean, Required: true},
				{ID: "apar", Label: "APAR", Kind: KindBoolean, Required: true},
				{ID: "p3k", Label: "Kotak P3K", Kind: KindBoolean, Required: true},
				{ID: "seat_belt", Label: "Sabuk Pengaman/Seat belt", Kind: KindBoolean, Required: true},
			},
		},
		{
			ID:    "electrical",
			Title: "Electrical",
			Items: []Item{
				{ID: "instrumen_panel", Label: "Instrumen Panel", Kind: KindBoolean, Required: true},
				{ID: "fuse_box", Label: "Fuse Box", Kind: KindBoolean, Required: true},
				{ID: "wiper", Label: "Wiper", Kind: KindBoolean, Required: true},
				{ID: "accu", Label: "Accu", Kind: KindBoolean, Required: true},
				{ID: "dinamo_starter", Label: "Dinamo Starter", Kind: KindBoolean, Required: true},
				{ID: "alternator", Label: "Alternator", Kind: KindBoolean, Required: true},
				{ID: "klakson_horm", Label: "Klakson/Horm", Kind: KindBoolean, Required: true},
				{ID: "fuse_relay", Label: "Fuse/Relay", Kind: KindBoolean, Required: true},
				{ID: "sensor_water_temp", Label: "Sensor Water Temperature", Kind: KindBoolean, Required: true},
				{ID: "sensor_oil_press", Label: "Sensor Oil Pressure", Kind: KindBoolean, Required: true},
				{ID: "sensor_oil_temp_hyd", Label: "Sensor Oil Temperatur Hidrolic", Kind: KindBoolean, Required: true},
				{ID: "controller", Label: "Controller", Kind: KindBoolean, Required: true},
				{ID: "sensor_fuel", Label: "Sensor Fuel", Kind: KindBoolean, Required: true},
				{ID: "wiring_kabel", Label: "Wiring Kabel", Kind: KindBoolean, Required: true},
				{ID: "lampu_lampu", Label: "Lampu-lampu", Kind: KindBoolean, Required: true},
				{ID: "motor_engine_stop", Label: "Motor Engine Stop", Kind: KindBoolean, Required: true},
				{ID: "motor_rpm", Label: "Motor RPM", Kind: KindBoolean, Required: true},
				{ID: "swing_stop", Label: "Swing Stop", Kind: KindBoolean, Required: true},
			},
		},
		{
			ID:    "hydraulic",
			Title: "Hydraulic",
			Items: []Item{
				{ID: "cilinder_arm", Label: "Cilinder Arm", Kind: KindBoolean, Required: true},
				{ID: "hose_arm", Label: "Hose Arm", Kind: KindBoolean, Required: true},
				{ID: "cylinder_bucket", Label: "Cylinder Bucket", Kind: KindBoolean, Required: true},
				{ID: "hose_bucket", Label: "Hose Bucket", Kind: KindBoolean, Required: true},
				{ID: "cylinder_boom", Label: "Cylinder boom", Kind: KindBoolean, Required: true},
				{ID: "hose_boom", Label: "Hose Boom", Kind: KindBoolean, Required: true},
				{ID: "main_pump", Label: "Main Pump", Kind: KindBoolean, Required: true},
				{ID: "control_valve", Label: "Control Valve", Kind: KindBoolean, Required: true},
				{ID: "hidrolic_tank", Label: "Hidrolic Tank", Kind: KindBoolean, Required: true},
				{ID: "filter_oli_hidrolic", Label: "Filter Oli Hidrolic", Kind: KindBoolean, Required: true},
				{ID: "oil_hidrolic", Label: "Oil Hidrolic", Kind: KindBoolean, Required: true},
				{ID: "swing_motor", Label: "Swing Motor", Kind: KindBoolean, Required: true},
				{ID: "reduction_gear_swing", Label: "Reduction Gear Swing", Kind: KindBoolean, Required: true},
				{ID: "oil_swing", Label: "Oil Swing", Kind: KindBoolean, Required: true},
				{ID: "hose_swing", Label: "Hose Swing", Kind: KindBoolean, Required: true},
				{ID: "hose_hose_control", Label: "Hose-hose Control", Kind: KindBoolean, Required: true},
				{ID: "hose_hose_main_pump", Label: "Hose-hose Main Pump", Kind: KindBoolean, Required: true},
				{ID: "hose_pilot", Label: "Hose Pilot", Kind: KindBoolean, Required: true},
				{ID: "handle", Label: "Handle", Kind: KindBoolean, Required: true},
				{ID: "hose_handle", Label: "Hose Handle", Kind: KindBoolean, Required: true},
			},
		},
		{
			ID:    ApprovalSectionID,
			Title: "Approval",
			Items: []Item{
				{ID: ItemGeneralNote, Label: "Catatan Umum", Kind: KindText, Required: false},
				{ID: ItemSupervisorName, Label: "Nama Pengawas", Kind: KindText, Required: true},
			},
		},
	}}
}

// Criticality classifications printed in the Kategori column. Items absent
// from this table default to Kritis.
const (
	CriticalityCritical    = "Kritis"
	CriticalityNonCritical = "Non kritis"
)

var nonCriticalItems = map[string]struct{}{
	"upper_roller":        {},
	"lower_roller":        {},
	"tangga_naik":         {},
	"bushing_boom":        {},
	"pin_boom":            {},
	"seal_boom":           {},
	"bushing_arm":         {},
	"pin_arm":             {},
	"seal_arm":            {},
	"teeth_bucket":        {},
	"pin_bucket":          {},
	"bushing_bucket":      {},
	"adapter_bucket":      {},
	"side_cutter_bucket":  {},
	"karpet_kabin":        {},
	"filter_oli_hidrolic": {},
}

// Criticality returns the Kategori label for an item id.
func Criticality(itemID string) string {
	if _, ok := nonCriticalItems[itemID]; ok {
		return CriticalityNonCritical
	}
	return CriticalityCritical
}
