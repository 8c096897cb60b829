package report_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"eduquest-service/internal/domain"
	"eduquest-service/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawnText struct {
	page  int
	text  string
	x, y  float64
	style report.FontStyle
	size  float64
}

type fakeCanvas struct {
	pages     int
	texts     []drawnText
	lines     int
	images    int
	finishErr error
}

func (c *fakeCanvas) AddPage() { c.pages++ }

func (c *fakeCanvas) DrawText(text string, x, y float64, style report.FontStyle, size float64, _ report.Color) {
	c.texts = append(c.texts, drawnText{page: c.pages, text: text, x: x, y: y, style: style, size: size})
}

func (c *fakeCanvas) DrawLine(_, _, _, _, _ float64, _ report.Color) { c.lines++ }

func (c *fakeCanvas) DrawImage(_ []byte, _, _, _, _ float64) error {
	c.images++
	return nil
}

func (c *fakeCanvas) Finish() ([]byte, error) {
	if c.finishErr != nil {
		return nil, c.finishErr
	}
	return []byte(fmt.Sprintf("%%PDF pages=%d", c.pages)), nil
}

func (c *fakeCanvas) find(prefix string) []drawnText {
	var out []drawnText
	for _, t := range c.texts {
		if strings.HasPrefix(t.text, prefix) {
			out = append(out, t)
		}
	}
	return out
}

// halfEm treats every rune as half the font size wide.
type halfEm struct{}

func (halfEm) Width(text string, _ report.FontStyle, size float64) float64 {
	return float64(len([]rune(text))) * size * 0.5
}

type stubAvatars struct {
	png []byte
	err error
}

func (s stubAvatars) Load(context.Context, string) ([]byte, error) { return s.png, s.err }

func newBuilder(t *testing.T, canvas *fakeCanvas, avatars report.AvatarSource) *report.Builder {
	t.Helper()
	factory := func(w, h float64) (report.Canvas, error) {
		assert.Equal(t, report.A4Width, w)
		assert.Equal(t, report.A4Height, h)
		return canvas, nil
	}
	return report.NewBuilder(factory, halfEm{}, avatars, report.Options{
		AppName: "EduQuest",
		Footer:  "Pie de página",
		Now:     func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) },
	}, nil)
}

func completedActivity(n int) domain.Activity {
	a := domain.Activity{
		ID:             "stats-position-measures",
		Title:          "Medidas de Posición",
		Completed:      true,
		TotalQuestions: n,
		UserAnswers:    map[int]string{},
	}
	for i := 0; i < n; i++ {
		a.Questions = append(a.Questions, domain.Question{
			Text:          fmt.Sprintf("Pregunta %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "A",
		})
		a.UserAnswers[i] = "A"
	}
	a.Score = n * domain.PointsPerCorrectAnswer
	return a
}

func TestBuild_NoActivities(t *testing.T) {
	canvas := &fakeCanvas{}
	b := newBuilder(t, canvas, nil)

	user := domain.User{Name: "Ana", Course: "Tercero Medio", Points: 0, Level: 1}
	doc, err := b.Build(context.Background(), user, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Pages)
	assert.Equal(t, 1, canvas.pages)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "report_eduquest_Ana.pdf", doc.Filename)
	assert.NotEmpty(t, doc.Bytes)

	assert.Len(t, canvas.find("EduQuest"), 1)
	assert.Len(t, canvas.find("Reporte de Progreso"), 1)
	assert.Len(t, canvas.find("Fecha: 07/03/2025"), 1)
	assert.Len(t, canvas.find("Resumen de Actividades"), 1)
	assert.Len(t, canvas.find("- Puntos Totales: 0"), 1)
	assert.Len(t, canvas.find("- Nivel Actual: 1"), 1)
	assert.Len(t, canvas.find("- Actividades Completadas: 0 de 0"), 1)
	assert.Len(t, canvas.find("Pie de página"), 1)
	assert.Equal(t, 1, canvas.lines)
	assert.Zero(t, canvas.images)
}

func TestBuild_HeaderIsRightAligned(t *testing.T) {
	canvas := &fakeCanvas{}
	b := newBuilder(t, canvas, nil)

	_, err := b.Build(context.Background(), domain.User{Name: "Ana", Level: 1}, nil)
	require.NoError(t, err)

	title := canvas.find("EduQuest")[0]
	assert.InDelta(t, report.A4Width-50-halfEm{}.Width("EduQuest", report.Bold, 24), title.x, 1e-9)
	assert.Equal(t, report.Bold, title.style)
	assert.Equal(t, 24.0, title.size)
}

func TestBuild_SkipsIncompleteActivities(t *testing.T) {
	canvas := &fakeCanvas{}
	b := newBuilder(t, canvas, nil)

	done := completedActivity(5)
	done.Score = 30
	pending := domain.Activity{ID: "paes-math-prep", Title: "Preparación PAES"}

	_, err := b.Build(context.Background(), domain.User{Name: "Ana", Level: 1}, []domain.Activity{done, pending})
	require.NoError(t, err)

	assert.Len(t, canvas.find("- Actividades Completadas: 1 de 2"), 1)
	assert.Len(t, canvas.find("Medidas de Posición"), 1)
	assert.Empty(t, canvas.find("Preparación PAES"))
	assert.Len(t, canvas.find("Calificación: 3 / 5"), 1)
}

func TestBuild_AnswerLines(t *testing.T) {
	canvas := &fakeCanvas{}
	b := newBuilder(t, canvas, nil)

	a := completedActivity(3)
	a.UserAnswers = map[int]string{0: "A", 1: "B"}
	a.Score = 10

	_, err := b.Build(context.Background(), domain.User{Name: "Ana", Level: 1}, []domain.Activity{a})
	require.NoError(t, err)

	assert.Len(t, canvas.find("Tu respuesta: A"), 1)
	assert.Len(t, canvas.find("Tu respuesta: B"), 1)
	assert.Len(t, canvas.find("Tu respuesta: No respondida"), 1)
	// Only the wrong and the unanswered question show the key.
	assert.Len(t, canvas.find("Respuesta correcta: A"), 2)
}

func TestBuild_PaginatesWithoutSplittingQuestions(t *testing.T) {
	canvas := &fakeCanvas{}
	b := newBuilder(t, canvas, nil)

	doc, err := b.Build(context.Background(), domain.User{Name: "Ana", Level: 1}, []domain.Activity{completedActivity(20)})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, 2, canvas.pages)

	questionPage := 0
	for _, txt := range canvas.texts {
		switch {
		case strings.Contains(txt.text, ". Pregunta "):
			questionPage = txt.page
		case strings.HasPrefix(txt.text, "Tu respuesta"):
			assert.Equal(t, questionPage, txt.page, "answer for a question landed on another page")
		}
		if txt.text != "Pie de página" {
			assert.GreaterOrEqual(t, txt.y, 50.0, "%q drawn inside the bottom margin", txt.text)
		}
	}

	assert.Len(t, canvas.find("Pie de página"), 2)
	assert.NotEmpty(t, canvas.find("20. Pregunta 20"))
	assert.Equal(t, 2, canvas.find("20. Pregunta 20")[0].page)
	assert.Equal(t, 1, canvas.find("1. Pregunta 1")[0].page)
}

func TestBuild_OversizedQuestionFlows(t *testing.T) {
	canvas := &fakeCanvas{}
	b := newBuilder(t, canvas, nil)

	a := completedActivity(1)
	a.Questions[0].Text = strings.Repeat("palabra ", 1500)

	doc, err := b.Build(context.Background(), domain.User{Name: "Ana", Level: 1}, []domain.Activity{a})
	require.NoError(t, err)
	assert.Greater(t, doc.Pages, 1)
	for _, txt := range canvas.texts {
		if txt.text != "Pie de página" {
			assert.GreaterOrEqual(t, txt.y, 50.0)
		}
	}
}

func TestBuild_AvatarFailureIsNotFatal(t *testing.T) {
	canvas := &fakeCanvas{}
	b := newBuilder(t, canvas, stubAvatars{err: errors.New("boom")})

	doc, err := b.Build(context.Background(), domain.User{Name: "Ana", ProfilePicture: "https://example.com/a.png", Level: 1}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Bytes)
	assert.Zero(t, canvas.images)
}

func TestBuild_DrawsAvatar(t *testing.T) {
	canvas := &fakeCanvas{}
	b := newBuilder(t, canvas, stubAvatars{png: []byte("png")})

	_, err := b.Build(context.Background(), domain.User{Name: "Ana", ProfilePicture: "data:image/png;base64,AA==", Level: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, canvas.images)
}

func TestBuild_EncodeFailureReturnsNothing(t *testing.T) {
	canvas := &fakeCanvas{finishErr: errors.New("disk full")}
	b := newBuilder(t, canvas, nil)

	doc, err := b.Build(context.Background(), domain.User{Name: "Ana", Level: 1}, []domain.Activity{completedActivity(2)})
	require.Error(t, err)
	assert.Empty(t, doc.Bytes)
	assert.Zero(t, doc.Pages)
}

func TestBuild_CanvasAllocationFailure(t *testing.T) {
	factory := func(float64, float64) (report.Canvas, error) { return nil, errors.New("no fonts") }
	b := report.NewBuilder(factory, halfEm{}, nil, report.Options{AppName: "EduQuest"}, nil)

	_, err := b.Build(context.Background(), domain.User{Name: "Ana"}, nil)
	require.Error(t, err)
}

func TestWrap(t *testing.T) {
	width := func(s string) float64 { return float64(len(s)) }

	assert.Empty(t, report.Wrap("", 10, width))
	assert.Empty(t, report.Wrap("   ", 10, width))
	assert.Equal(t, []string{"hola"}, report.Wrap("hola", 10, width))
	assert.Equal(t, []string{"aa bb", "cc"}, report.Wrap("aa bb cc", 5, width))
	assert.Equal(t, []string{"abcdefgh", "ij"}, report.Wrap("abcdefgh ij", 3, width))
	assert.Equal(t, []string{"uno dos"}, report.Wrap("uno\ndos", 10, width))

	for _, line := range report.Wrap(strings.Repeat("xy ", 50), 10, width) {
		assert.LessOrEqual(t, width(line), 10.0)
		assert.NotEmpty(t, line)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		app, user, want string
	}{
		{"EduQuest", "Ana María López", "report_eduquest_Ana_María_López.pdf"},
		{"EduQuest", "  --Juan!! ", "report_eduquest_Juan.pdf"},
		{"EduQuest", "", "report_eduquest_usuario.pdf"},
		{"Edu Quest", "a/b\\c", "report_edu_quest_a_b_c.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, report.Filename(tt.app, tt.user))
	}
}
