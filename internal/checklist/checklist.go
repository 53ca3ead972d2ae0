package checklist

// ItemKind describes how a checklist item is answered.
type ItemKind string

const (
	KindBoolean ItemKind = "boolean"
	KindText    ItemKind = "text"
	KindNumber  ItemKind = "number"
)

// Item is a single entry on the inspection form.
type Item struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     ItemKind `json:"type"`
	Required bool     `json:"required"`
}

// Section groups items under one heading of the form.
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Definition is the versioned catalogue of sections for one equipment type.
// It is immutable; a wizard reads it at start and never mutates it.
type Definition struct {
	Sections []Section
}

// ApprovalSectionID identifies the special section that carries the general
// note and the supervisor name and is rendered as signature capture instead
// of being scored.
const ApprovalSectionID = "approval"

// Pseudo-item ids of the approval section and the two signature slots that
// live outside the section loop.
const (
	ItemGeneralNote        = "catatan_umum"
	ItemSupervisorName     = "nama_pengawas"
	KeySignatureOperator   = "signature_operator"
	KeySignatureSupervisor = "signature_supervisor"
)

// SectionCount returns the number of wizard steps after the metadata step.
func (d Definition) SectionCount() int {
	return len(d.Sections)
}

// SectionAt returns the section for a wizard step index.
func (d Definition) SectionAt(step int) (Section, bool) {
	if step < 0 || step >= len(d.Sections) {
		return Section{}, false
	}
	return d.Sections[step], true
}

// Item looks an item up by id across all sections.
func (d Definition) Item(id string) (Item, bool) {
	for _, s := range d.Sections {
		for _, it := range s.Items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return Item{}, false
}

// InspectionSections returns the scored sections, excluding approval.
func (d Definition) InspectionSections() []Section {
	out := make([]Section, 0, len(d.Sections))
	for _, s := range d.Sections {
		if s.ID == ApprovalSectionID {
			continue
		}
		out = append(out, s)
	}
	return out
}
