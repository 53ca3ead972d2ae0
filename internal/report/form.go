package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/example/p2h/backend/internal/checklist"
	"github.com/example/p2h/backend/internal/models"
)

// View is the finished-record projection the renderer consumes.
type View struct {
	UnitCode     string
	OperatorName string
	Shift        string
	Date         string
	HM           string
	Answers      checklist.AnswerSet
	Sections     []checklist.Section
}

// BuildView projects a persisted record onto the given checklist definition.
func BuildView(rec *models.Inspection, def checklist.Definition) (View, error) {
	var answers checklist.AnswerSet
	if err := json.Unmarshal(rec.Answers, &answers); err != nil {
		return View{}, errors.Wrap(err, "decode stored answers")
	}
	// The approval transition stores the supervisor signature on the record
	// itself; it wins over whatever the wizard captured.
	if rec.SupervisorSignature != "" {
		answers[checklist.KeySignatureSupervisor] = checklist.SignatureAnswer(rec.SupervisorSignature)
	}
	hm := ""
	if rec.HMStart > 0 {
		hm = strconv.FormatFloat(rec.HMStart, 'f', -1, 64)
	}
	return View{
		UnitCode:     rec.UnitCode,
		OperatorName: rec.OperatorName,
		Shift:        rec.Shift,
		Date:         rec.Date,
		HM:           hm,
		Answers:      answers,
		Sections:     def.Sections,
	}, nil
}

// FileName names the exported artifact by unit code and date.
func FileName(unitCode, date string) string {
	return fmt.Sprintf("P2H-%s-%s.pdf", unitCode, date)
}

// Form geometry of ALBI-FM-OPR-03, A4 portrait, millimetres.
const (
	pageWidth = 210.0
	marginL   = 8.0
	marginR   = 8.0
	contentW  = pageWidth - marginL - marginR

	headerTop = 8.0
	headerH   = 24.0

	metaH    = 18.0
	metaRows = 4

	colGap    = 1.5
	rowH      = 3.8
	headRowH  = 4.0
	noColW    = 7.0
	katColW   = 14.0
	condColW  = 5.0
	totalCond = condColW * 5

	dottedFill = ".............................................................................................................................."
)

var (
	leftColumnSections  = []string{"mesin", "undercarriage", "attachment", "cabin"}
	rightColumnSections = []string{"electrical", "hydraulic"}
)

// Compose lays the full form out into drawing primitives. The two checklist
// columns are drawn independently; everything below them starts at the
// deeper of the two end positions. Output is a single fixed page: a
// checklist long enough to overflow A4 is not handled here.
func Compose(v View) Page {
	var p Page

	composeHeader(&p)
	curY := composeMetadata(&p, v, headerTop+headerH+1)

	colW := (contentW - colGap) / 2
	leftX := marginL
	rightX := marginL + colW + colGap

	leftEndY := composeColumn(&p, v, leftX, colW, pick(v.Sections, leftColumnSections), curY)
	rightEndY := composeColumn(&p, v, rightX, colW, pick(v.Sections, rightColumnSections), curY)

	legendEndY := composeLegends(&p, rightX, colW, rightEndY+1)

	footerY := max(leftEndY, legendEndY) + 3
	notesEndY := composeNotes(&p, v, footerY)
	composeSignatures(&p, v, notesEndY+4)

	return p
}

func pick(sections []checklist.Section, ids []string) []checklist.Section {
	var out []checklist.Section
	for _, id := range ids {
		for _, s := range sections {
			if s.ID == id {
				out = append(out, s)
			}
		}
	}
	return out
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func composeHeader(p *Page) {
	p.rect(marginL, headerTop, contentW, headerH, 0.4)

	col1W := contentW * 0.28
	col2W := contentW * 0.40
	col3W := contentW - col1W - col2W
	colDiv1 := marginL + col1W
	colDiv2 := colDiv1 + col2W
	p.line(colDiv1, headerTop, colDiv1, headerTop+headerH, 0.4)
	p.line(colDiv2, headerTop, colDiv2, headerTop+headerH, 0.4)

	p.text(marginL+col1W/2, headerTop+17, 8, true, AlignCenter, "PT Alam Lestari")
	p.text(marginL+col1W/2, headerTop+21, 8, true, AlignCenter, "Baratamaindo")

	centerX := colDiv1 + col2W/2
	p.text(centerX, headerTop+9, 9, true, AlignCenter, "PEMERIKSAAN DAN PERAWATAN HARIAN")
	p.text(centerX, headerTop+15, 9, true, AlignCenter, "UNIT EXCAVATOR")

	docRowH := headerH / 4
	for i := 1; i < 4; i++ {
		p.line(colDiv2, headerTop+docRowH*float64(i), marginL+contentW, headerTop+docRowH*float64(i), 0.4)
	}
	labelX := colDiv2 + 2
	valueX := colDiv2 + col3W*0.55
	rows := []struct{ label, value string }{
		{"Nomor", ": ALBI-FM-OPR-03"},
		{"Tanggal Terbit", ": 20 Agustus 2025"},
		{"Revisi", ": 01"},
		{"Halaman", ": 1 dari 1"},
	}
	for i, row := range rows {
		y := headerTop + docRowH*float64(i) + 3.5
		p.text(labelX, y, 6.5, false, AlignLeft, row.label)
		p.text(valueX, y, 6.5, false, AlignLeft, row.value)
	}
}

func composeMetadata(p *Page, v View, curY float64) float64 {
	metaRowH := metaH / metaRows
	p.rect(marginL, curY, contentW, metaH, 0.3)

	value := func(s string) string {
		if s == "" {
			return ": " + dottedFill
		}
		return ": " + s
	}
	labelX := marginL + 2
	valX := marginL + 28
	rows := []struct{ label, value string }{
		{"Kode Unit", value(v.UnitCode)},
		{"Nama Operator", value(v.OperatorName)},
		{"HM", value(v.HM)},
		{"Tanggal", value(v.Date)},
	}
	for i, row := range rows {
		y := curY + metaRowH*float64(i) + 3.2
		p.text(labelX, y, 7, false, AlignLeft, row.label)
		p.text(valX, y, 7, false, AlignLeft, row.value)
	}
	for i := 1; i < metaRows; i++ {
		p.line(marginL, curY+metaRowH*float64(i), marginL+contentW*0.72, curY+metaRowH*float64(i), 0.3)
	}

	// Shift box: two mutually exclusive checkboxes on the right.
	shiftBoxX := marginL + contentW*0.72
	p.line(shiftBoxX, curY, shiftBoxX, curY+metaH, 0.3)
	p.text(shiftBoxX+3, curY+5, 7.5, true, AlignLeft, "Shift :")

	const cbSize = 2.5
	cbY1 := curY + 8
	cbY2 := curY + 13
	p.rect(shiftBoxX+15, cbY1-2, cbSize, cbSize, 0.3)
	p.text(shiftBoxX+19, cbY1, 7, false, AlignLeft, "I (Siang)")
	p.rect(shiftBoxX+15, cbY2-2, cbSize, cbSize, 0.3)
	p.text(shiftBoxX+19, cbY2, 7, false, AlignLeft, "II (Malam)")

	if isShiftOne(v.Shift) {
		p.checkmark(shiftBoxX+15+cbSize/2, cbY1-2+cbSize/2, 0.8)
	}
	if isShiftTwo(v.Shift) {
		p.checkmark(shiftBoxX+15+cbSize/2, cbY2-2+cbSize/2, 0.8)
	}

	return curY + metaH + 1
}

func isShiftOne(shift string) bool {
	return shift == "Shift 1" || shift == "1" || shift == "I" ||
		strings.Contains(strings.ToLower(shift), "siang")
}

func isShiftTwo(shift string) bool {
	return shift == "Shift 2" || shift == "2" || shift == "II" ||
		strings.Contains(strings.ToLower(shift), "malam")
}

// composeColumn draws one independent checklist column and returns its end
// position. Layout per row: No. | Pemeriksaan | Kategori | C K B N R.
func composeColumn(p *Page, v View, startX, columnW float64, secs []checklist.Section, startY float64) float64 {
	y := startY
	nameW := columnW - noColW - katColW - totalCond

	// Header: No./Pemeriksaan/Kategori span both rows, Kondisi splits into
	// the five code cells underneath.
	p.rect(startX, y, noColW, headRowH*2, 0.3)
	p.rect(startX+noColW, y, nameW, headRowH*2, 0.3)
	p.rect(startX+noColW+nameW, y, katColW, headRowH*2, 0.3)
	p.rect(startX+noColW+nameW+katColW, y, totalCond, headRowH, 0.3)
	for i := range checklist.Conditions {
		p.rect(startX+noColW+nameW+katColW+float64(i)*condColW, y+headRowH, condColW, headRowH, 0.3)
	}

	p.text(startX+noColW/2, y+headRowH+1, 6, true, AlignCenter, "No.")
	p.text(startX+noColW+nameW/2, y+headRowH+1, 6, true, AlignCenter, "Pemeriksaan")
	p.text(startX+noColW+nameW+katColW/2, y+headRowH+1, 6, true, AlignCenter, "Kategori")
	p.text(startX+noColW+nameW+katColW+totalCond/2, y+3, 6, true, AlignCenter, "Kondisi")
	for i, code := range checklist.Conditions {
		p.text(startX+noColW+nameW+katColW+float64(i)*condColW+condColW/2, y+headRowH+3, 5.5, false, AlignCenter, string(code))
	}
	y += headRowH * 2

	for _, section := range secs {
		if section.ID == checklist.ApprovalSectionID {
			continue
		}

		p.rect(startX, y, columnW, rowH, 0.3)
		p.text(startX+1.5, y+2.8, 6, true, AlignLeft, section.Title)
		y += rowH

		for idx, item := range section.Items {
			p.rect(startX, y, columnW, rowH, 0.15)
			p.line(startX+noColW, y, startX+noColW, y+rowH, 0.15)
			p.line(startX+noColW+nameW, y, startX+noColW+nameW, y+rowH, 0.15)
			p.line(startX+noColW+nameW+katColW, y, startX+noColW+nameW+katColW, y+rowH, 0.15)
			for i := range checklist.Conditions {
				x := startX + noColW + nameW + katColW + float64(i)*condColW
				p.line(x, y, x, y+rowH, 0.15)
			}

			p.text(startX+noColW/2, y+2.8, 6, false, AlignCenter, strconv.Itoa(idx+1))
			p.text(startX+noColW+1, y+2.8, 6, false, AlignLeft, item.Label)
			p.text(startX+noColW+nameW+katColW/2, y+2.8, 5, false, AlignCenter, checklist.Criticality(item.ID))

			if code, ok := v.Answers.Condition(item.ID); ok {
				for i, opt := range checklist.Conditions {
					if code == opt {
						cx := startX + noColW + nameW + katColW + float64(i)*condColW + condColW/2
						p.checkmark(cx, y+rowH/2, 1.0)
					}
				}
			}

			y += rowH
		}
	}

	return y
}

func composeLegends(p *Page, legendX, legendW, legendY float64) float64 {
	const ketBoxH = 14.0
	p.rect(legendX, legendY, legendW, ketBoxH, 0.3)
	p.text(legendX+2, legendY+3.5, 6.5, true, AlignLeft, "Keterangan :")
	mid := legendX + legendW/2
	p.text(legendX+4, legendY+7, 6, false, AlignLeft, "C  = Cukup")
	p.text(mid, legendY+7, 6, false, AlignLeft, "N  = Normal")
	p.text(legendX+4, legendY+10, 6, false, AlignLeft, "K  = Kurang")
	p.text(mid, legendY+10, 6, false, AlignLeft, "R  = Rusak")
	p.text(legendX+4, legendY+13, 6, false, AlignLeft, "B  = Bocor")
	legendY += ketBoxH

	const katBoxH = 16.0
	p.rect(legendX, legendY, legendW, katBoxH, 0.3)
	p.text(legendX+2, legendY+3.5, 6.5, true, AlignLeft, "Keterangan Kategori :")
	p.text(legendX+2, legendY+7, 5.5, false, AlignLeft, "Kritis: STOP Bekerja jika terdapat Jawaban Kurang/Rusak/Bocor")
	p.text(legendX+2, legendY+10, 5.5, false, AlignLeft, "Non Kritis: Mengikuti rekomendasi mekanik jika")
	p.text(legendX+2, legendY+12.5, 5.5, false, AlignLeft, "terdapat jawaban Kurang/Rusak/Bocor")
	p.text(legendX+2, legendY+15, 5.5, false, AlignLeft, "(Wajib diperbaiki dalam 1x24 Jam)")
	return legendY + katBoxH
}

func composeNotes(p *Page, v View, footerY float64) float64 {
	notes := v.Answers.Text(checklist.ItemGeneralNote)
	wrapped := wrapText(notes, contentW-20, 6.5)
	const lineH = 3.0
	boxH := max(10, 7+float64(len(wrapped))*lineH)

	p.rect(marginL, footerY, contentW, boxH, 0.3)
	p.text(marginL+2, footerY+4, 7, true, AlignLeft, "Catatan :")
	for i, line := range wrapped {
		p.text(marginL+18, footerY+4+float64(i)*lineH, 6.5, false, AlignLeft, line)
	}
	return footerY + boxH
}

func composeSignatures(p *Page, v View, sigY float64) {
	sigLeftX := marginL + contentW*0.2
	sigRightX := marginL + contentW*0.75

	p.text(sigLeftX, sigY, 7, false, AlignCenter, "Dikerjakan oleh,")
	p.text(sigRightX, sigY, 7, false, AlignCenter, "Diperiksa Oleh,")

	const sigImgW, sigImgH = 30.0, 10.0
	if img := v.Answers.Signature(checklist.KeySignatureOperator); strings.HasPrefix(img, "data:image") {
		p.image(sigLeftX-sigImgW/2, sigY+1, sigImgW, sigImgH, img)
	}
	if img := v.Answers.Signature(checklist.KeySignatureSupervisor); strings.HasPrefix(img, "data:image") {
		p.image(sigRightX-sigImgW/2, sigY+1, sigImgW, sigImgH, img)
	}

	p.dashedLine(sigLeftX-25, sigY+12, sigLeftX+25, sigY+12, 0.3)
	p.dashedLine(sigRightX-25, sigY+12, sigRightX+25, sigY+12, 0.3)

	operatorName := v.OperatorName
	if operatorName == "" {
		operatorName = "........................"
	}
	supervisorName := v.Answers.Text(checklist.ItemSupervisorName)
	if supervisorName == "" {
		supervisorName = "........................"
	}
	p.text(sigLeftX, sigY+16, 7, true, AlignCenter, operatorName)
	p.text(sigRightX, sigY+16, 7, true, AlignCenter, supervisorName)

	p.text(sigLeftX, sigY+20, 6.5, false, AlignCenter, "Operator")
	p.text(sigRightX, sigY+20, 6.5, false, AlignCenter, "Pengawas")
}
