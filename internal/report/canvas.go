package report

// FontStyle selects the regular or bold face of the report font.
type FontStyle int

const (
	Regular FontStyle = iota
	Bold
)

// Color is an RGB triple with components in [0,1].
type Color struct {
	R, G, B float64
}

var (
	colorPrimary   = Color{0.29, 0.78, 0.89}
	colorText      = Color{0.1, 0.1, 0.1}
	colorGray      = Color{0.4, 0.4, 0.4}
	colorCorrect   = Color{0.22, 0.6, 0.33}
	colorIncorrect = Color{0.8, 0.2, 0.2}
)

// A4 page size in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// Canvas is the drawing surface the layout writes to. Coordinates are in
// points with the origin at the bottom-left corner of the page; text is
// positioned by its baseline.
type Canvas interface {
	AddPage()
	DrawText(text string, x, y float64, style FontStyle, size float64, c Color)
	DrawLine(x1, y1, x2, y2, thickness float64, c Color)
	// DrawImage places a PNG with its bottom-left corner at (x, y).
	DrawImage(png []byte, x, y, w, h float64) error
	// Finish encodes the document. No bytes are returned on error.
	Finish() ([]byte, error)
}

// CanvasFactory allocates a fresh, empty document.
type CanvasFactory func(pageWidth, pageHeight float64) (Canvas, error)

// Measurer reports the rendered width of text in points.
type Measurer interface {
	Width(text string, style FontStyle, size float64) float64
}
