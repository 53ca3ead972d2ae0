package report

import "strings"

// The renderer is split in two passes: Compose evaluates the form's box
// model into flat drawing primitives with absolute coordinates, and
// RenderPDF walks those primitives. All coordinate arithmetic lives in the
// compose pass, in millimetres on an A4 portrait page.

// Align controls horizontal text anchoring.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Op is one drawing primitive.
type Op interface{ isOp() }

// Rect is a stroked rectangle.
type Rect struct {
	X, Y, W, H float64
	LineWidth  float64
}

// Line is a straight stroke, optionally dashed.
type Line struct {
	X1, Y1, X2, Y2 float64
	LineWidth      float64
	Dashed         bool
}

// Text is a single line of text anchored at its baseline.
type Text struct {
	X, Y  float64
	Size  float64
	Bold  bool
	Align Align
	Value string
}

// Image is an embedded base64 data-URL image.
type Image struct {
	X, Y, W, H float64
	Data       string
}

func (Rect) isOp()  {}
func (Line) isOp()  {}
func (Text) isOp()  {}
func (Image) isOp() {}

// Page is the evaluated single-page document.
type Page struct {
	Ops []Op
}

func (p *Page) rect(x, y, w, h, lw float64) {
	p.Ops = append(p.Ops, Rect{X: x, Y: y, W: w, H: h, LineWidth: lw})
}

func (p *Page) line(x1, y1, x2, y2, lw float64) {
	p.Ops = append(p.Ops, Line{X1: x1, Y1: y1, X2: x2, Y2: y2, LineWidth: lw})
}

func (p *Page) dashedLine(x1, y1, x2, y2, lw float64) {
	p.Ops = append(p.Ops, Line{X1: x1, Y1: y1, X2: x2, Y2: y2, LineWidth: lw, Dashed: true})
}

func (p *Page) text(x, y, size float64, bold bool, align Align, value string) {
	p.Ops = append(p.Ops, Text{X: x, Y: y, Size: size, Bold: bold, Align: align, Value: value})
}

func (p *Page) image(x, y, w, h float64, data string) {
	p.Ops = append(p.Ops, Image{X: x, Y: y, W: w, H: h, Data: data})
}

// checkmark draws the tick used in condition cells and shift boxes: a short
// stroke down-left and a longer stroke up-right, centred on (cx, cy).
func (p *Page) checkmark(cx, cy, size float64) {
	p.line(cx-size, cy, cx-size*0.3, cy+size*0.7, 0.4)
	p.line(cx-size*0.3, cy+size*0.7, cx+size, cy-size*0.5, 0.4)
}

// points to millimetres
const ptToMM = 0.3528

// wrapText greedily wraps words to fit maxWidth at the given font size,
// using the average Helvetica glyph width. The estimate only drives the
// notes box height, so a conservative approximation is enough.
func wrapText(s string, maxWidth, fontSize float64) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	charWidth := fontSize * 0.5 * ptToMM
	maxChars := int(maxWidth / charWidth)
	if maxChars < 1 {
		maxChars = 1
	}

	var lines []string
	var current string
	for _, word := range strings.Fields(s) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if len(candidate) <= maxChars {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		for len(word) > maxChars {
			lines = append(lines, word[:maxChars])
			word = word[maxChars:]
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
