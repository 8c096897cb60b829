// Package pdf implements the report canvas on top of fpdf.
package pdf

import (
	"bytes"
	"fmt"
	"image/png"

	"eduquest-service/internal/report"
	"eduquest-service/internal/report/fonts"

	"github.com/go-pdf/fpdf"
)

type Canvas struct {
	doc    *fpdf.Fpdf
	height float64
	images int
}

// New allocates an empty document with the report fonts registered. It
// satisfies report.CanvasFactory.
func New(width, height float64) (report.Canvas, error) {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddUTF8FontFromBytes(fonts.Family, "", fonts.RegularTTF)
	doc.AddUTF8FontFromBytes(fonts.Family, "B", fonts.BoldTTF)
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("register fonts: %w", err)
	}
	return &Canvas{doc: doc, height: height}, nil
}

func (c *Canvas) AddPage() {
	c.doc.AddPage()
}

func (c *Canvas) DrawText(text string, x, y float64, style report.FontStyle, size float64, col report.Color) {
	c.doc.SetFont(fonts.Family, styleString(style), size)
	c.doc.SetTextColor(channel(col.R), channel(col.G), channel(col.B))
	c.doc.Text(x, c.height-y, text)
}

func (c *Canvas) DrawLine(x1, y1, x2, y2, thickness float64, col report.Color) {
	c.doc.SetDrawColor(channel(col.R), channel(col.G), channel(col.B))
	c.doc.SetLineWidth(thickness)
	c.doc.Line(x1, c.height-y1, x2, c.height-y2)
}

// DrawImage validates the PNG before handing it to fpdf, whose errors are
// sticky and would fail the whole document.
func (c *Canvas) DrawImage(raw []byte, x, y, w, h float64) error {
	if _, err := png.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("embed image: %w", err)
	}
	c.images++
	name := fmt.Sprintf("image-%d", c.images)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	c.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	c.doc.ImageOptions(name, x, c.height-y-h, w, h, false, opts, 0, "")
	return nil
}

func (c *Canvas) Finish() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func styleString(s report.FontStyle) string {
	if s == report.Bold {
		return "B"
	}
	return ""
}

func channel(v float64) int {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return int(v*255 + 0.5)
	}
}
