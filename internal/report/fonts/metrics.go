// Package fonts provides the report typeface and its metrics.
package fonts

import (
	"fmt"
	"sync"

	"eduquest-service/internal/report"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Family is the name the PDF canvas registers the embedded fonts under.
const Family = "GoFont"

var (
	RegularTTF = goregular.TTF
	BoldTTF    = gobold.TTF
)

type faceKey struct {
	style report.FontStyle
	size  float64
}

// Metrics measures text with the same TrueType fonts the PDF canvas embeds.
type Metrics struct {
	regular *truetype.Font
	bold    *truetype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

func NewMetrics() (*Metrics, error) {
	regular, err := truetype.Parse(RegularTTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(BoldTTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Metrics{regular: regular, bold: bold, faces: make(map[faceKey]font.Face)}, nil
}

// Width returns the advance width of text in points.
func (m *Metrics) Width(text string, style report.FontStyle, size float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := faceKey{style: style, size: size}
	face, ok := m.faces[key]
	if !ok {
		f := m.regular
		if style == report.Bold {
			f = m.bold
		}
		face = truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
		m.faces[key] = face
	}
	return float64(font.MeasureString(face, text)) / 64
}
