package pdf_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"eduquest-service/internal/domain"
	"eduquest-service/internal/report"
	"eduquest-service/internal/report/fonts"
	"eduquest-service/internal/report/pdf"

	pdfreader "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(n int) domain.Activity {
	a := domain.Activity{
		ID:             "paes-math-prep",
		Title:          "Preparación PAES: Matemática M1",
		Completed:      true,
		TotalQuestions: n,
		UserAnswers:    map[int]string{},
	}
	for i := 0; i < n; i++ {
		a.Questions = append(a.Questions, domain.Question{
			Text:          fmt.Sprintf("¿Cuál es el resultado de la operación número %d?", i+1),
			Options:       []string{"1", "2", "3", "4", "5"},
			CorrectAnswer: "1",
		})
		a.UserAnswers[i] = "2"
	}
	return a
}

func TestCanvas_RendersReadablePDF(t *testing.T) {
	metrics, err := fonts.NewMetrics()
	require.NoError(t, err)
	b := report.NewBuilder(pdf.New, metrics, nil, report.Options{AppName: "EduQuest", Footer: "EduQuest"}, nil)

	doc, err := b.Build(context.Background(), domain.User{Name: "Ana", Course: "Cuarto Medio", Level: 1}, []domain.Activity{activity(20)})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF-")))
	assert.Greater(t, doc.Pages, 1)

	r, err := pdfreader.NewReader(bytes.NewReader(doc.Bytes), int64(len(doc.Bytes)))
	require.NoError(t, err)
	assert.Equal(t, doc.Pages, r.NumPage())
}

func TestCanvas_SinglePage(t *testing.T) {
	c, err := pdf.New(report.A4Width, report.A4Height)
	require.NoError(t, err)
	c.AddPage()
	c.DrawText("Hola", 50, 700, report.Bold, 12, report.Color{})
	c.DrawLine(50, 690, 545, 690, 1, report.Color{R: 1})

	raw, err := c.Finish()
	require.NoError(t, err)

	r, err := pdfreader.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumPage())
}

func TestCanvas_RejectsNonPNGImage(t *testing.T) {
	c, err := pdf.New(report.A4Width, report.A4Height)
	require.NoError(t, err)
	c.AddPage()

	require.Error(t, c.DrawImage([]byte("jpeg?"), 50, 700, 60, 60))

	_, err = c.Finish()
	require.NoError(t, err)
}
