package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RenderPDF walks the composed page and writes a single A4 PDF. Undecodable
// signature images are skipped, matching the paper form where a missing
// signature simply leaves the dotted line blank.
func RenderPDF(p Page, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()
	pdf.SetDrawColor(0, 0, 0)

	imageCount := 0
	for _, op := range p.Ops {
		switch o := op.(type) {
		case Rect:
			pdf.SetLineWidth(o.LineWidth)
			pdf.Rect(o.X, o.Y, o.W, o.H, "D")
		case Line:
			pdf.SetLineWidth(o.LineWidth)
			if o.Dashed {
				pdf.SetDashPattern([]float64{1, 1}, 0)
			}
			pdf.Line(o.X1, o.Y1, o.X2, o.Y2)
			if o.Dashed {
				pdf.SetDashPattern([]float64{}, 0)
			}
		case Text:
			style := ""
			if o.Bold {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, o.Size)
			x := o.X
			if o.Align == AlignCenter {
				x -= pdf.GetStringWidth(o.Value) / 2
			}
			pdf.Text(x, o.Y, o.Value)
		case Image:
			imageCount++
			drawImage(pdf, o, imageCount)
		}
	}

	return errors.Wrap(pdf.Output(w), "write pdf")
}

// drawImage embeds a base64 data-URL image, skipping anything it cannot
// decode.
func drawImage(pdf *gofpdf.Fpdf, o Image, seq int) {
	imageType, raw, err := decodeDataURL(o.Data)
	if err != nil {
		logrus.WithError(err).Warn("skip signature image")
		return
	}
	name := fmt.Sprintf("sig%d", seq)
	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	if pdf.Err() {
		logrus.WithField("error", pdf.Error()).Warn("skip signature image")
		pdf.ClearError()
		return
	}
	pdf.ImageOptions(name, o.X, o.Y, o.W, o.H, false, opts, 0, "")
}

func decodeDataURL(data string) (imageType string, raw []byte, err error) {
	const prefix = "data:image/"
	if !strings.HasPrefix(data, prefix) {
		return "", nil, errors.New("not an image data url")
	}
	rest := data[len(prefix):]
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", nil, errors.New("image data url is not base64")
	}
	imageType = strings.ToUpper(rest[:sep])
	raw, err = base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return "", nil, errors.Wrap(err, "decode image payload")
	}
	return imageType, raw, nil
}
