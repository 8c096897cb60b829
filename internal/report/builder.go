package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"eduquest-service/internal/domain"
	"eduquest-service/internal/pkg/logger"
)

const (
	avatarSize       = 60.0
	lineHeight       = 12.0
	bodySize         = 10.0
	questionPadding  = 10.0
	activityGap      = 20.0
	titleSize        = 14.0
	titleLineHeight  = 18.0
	indent           = 10.0
	footerSize       = 8.0
	headerBlock      = 80.0
	summaryLineSpace = 18.0
)

// Labels are the fixed strings printed on the report.
type Labels struct {
	Subtitle      string
	Date          string
	Summary       string
	TotalPoints   string
	CurrentLevel  string
	Completed     string // format: completed, total
	Grade         string // format: correct, total
	YourAnswer    string
	Unanswered    string
	CorrectAnswer string
}

// SpanishLabels are the labels used by the learner-facing app.
var SpanishLabels = Labels{
	Subtitle:      "Reporte de Progreso",
	Date:          "Fecha",
	Summary:       "Resumen de Actividades",
	TotalPoints:   "Puntos Totales",
	CurrentLevel:  "Nivel Actual",
	Completed:     "- Actividades Completadas: %d de %d",
	Grade:         "Calificación: %d / %d",
	YourAnswer:    "Tu respuesta",
	Unanswered:    "No respondida",
	CorrectAnswer: "Respuesta correcta",
}

// AvatarSource resolves a profile picture reference into PNG bytes ready to embed.
type AvatarSource interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

type Options struct {
	AppName          string
	Footer           string
	Margin           float64
	PageWidth        float64
	PageHeight       float64
	PointsPerCorrect int
	Labels           Labels
	Now              func() time.Time
}

// Document is a finished report.
type Document struct {
	Filename    string
	ContentType string
	Bytes       []byte
	Pages       int
}

// Builder lays out progress reports.
type Builder struct {
	newCanvas CanvasFactory
	measure   Measurer
	avatars   AvatarSource
	opts      Options
	log       *logger.Logger
}

func NewBuilder(newCanvas CanvasFactory, measure Measurer, avatars AvatarSource, opts Options, log *logger.Logger) *Builder {
	if opts.Margin <= 0 {
		opts.Margin = 50
	}
	if opts.PageWidth <= 0 || opts.PageHeight <= 0 {
		opts.PageWidth, opts.PageHeight = A4Width, A4Height
	}
	if opts.PointsPerCorrect <= 0 {
		opts.PointsPerCorrect = domain.PointsPerCorrectAnswer
	}
	if opts.Labels == (Labels{}) {
		opts.Labels = SpanishLabels
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{newCanvas: newCanvas, measure: measure, avatars: avatars, opts: opts, log: log.With("component", "report")}
}

// page tracks the cursor over the current page.
type page struct {
	b      *Builder
	canvas Canvas
	y      float64
	pages  int
}

func (p *page) top() float64 { return p.b.opts.PageHeight - p.b.opts.Margin }

// fits reports whether height more points fit above the bottom margin.
func (p *page) fits(height float64) bool {
	return p.y-height >= p.b.opts.Margin
}

func (p *page) footer() {
	p.canvas.DrawText(p.b.opts.Footer, p.b.opts.Margin, p.b.opts.Margin/2, Regular, footerSize, colorGray)
}

// breakPage finalizes the current page and starts a new one.
func (p *page) breakPage() {
	p.footer()
	p.canvas.AddPage()
	p.pages++
	p.y = p.top()
}

func (p *page) ensure(height float64) {
	if !p.fits(height) {
		p.breakPage()
	}
}

// Build renders the report for user over the completed activities in input
// order. Nothing is returned unless the whole document encodes successfully.
func (b *Builder) Build(ctx context.Context, user domain.User, activities []domain.Activity) (Document, error) {
	canvas, err := b.newCanvas(b.opts.PageWidth, b.opts.PageHeight)
	if err != nil {
		return Document{}, fmt.Errorf("allocate document: %w", err)
	}
	canvas.AddPage()
	p := &page{b: b, canvas: canvas, pages: 1}
	p.y = p.top()

	completed := make([]domain.Activity, 0, len(activities))
	for _, a := range activities {
		if a.Completed {
			completed = append(completed, a)
		}
	}

	b.header(ctx, p, user)
	b.summary(p, user, len(completed), len(activities))
	for _, a := range completed {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		b.activity(p, a)
	}
	p.footer()

	raw, err := canvas.Finish()
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}
	return Document{
		Filename:    Filename(b.opts.AppName, user.Name),
		ContentType: "application/pdf",
		Bytes:       raw,
		Pages:       p.pages,
	}, nil
}

func (b *Builder) header(ctx context.Context, p *page, user domain.User) {
	m := b.opts.Margin
	right := b.opts.PageWidth - m

	if user.ProfilePicture != "" && b.avatars != nil {
		if png, err := b.avatars.Load(ctx, user.ProfilePicture); err != nil {
			b.log.Warn("skipping profile picture", "error", err)
		} else if err := p.canvas.DrawImage(png, m, p.y-avatarSize, avatarSize, avatarSize); err != nil {
			b.log.Warn("skipping profile picture", "error", err)
		}
	}

	appWidth := b.measure.Width(b.opts.AppName, Bold, 24)
	p.canvas.DrawText(b.opts.AppName, right-appWidth, p.y-20, Bold, 24, colorPrimary)
	subWidth := b.measure.Width(b.opts.Labels.Subtitle, Regular, 14)
	p.canvas.DrawText(b.opts.Labels.Subtitle, right-subWidth, p.y-40, Regular, 14, colorGray)

	p.y -= headerBlock
	p.canvas.DrawText(user.Name, m, p.y, Bold, 18, colorText)
	p.y -= 18
	p.canvas.DrawText(user.Course, m, p.y, Regular, 12, colorGray)
	p.y -= 12
	date := b.opts.Now().Format("02/01/2006")
	p.canvas.DrawText(b.opts.Labels.Date+": "+date, m, p.y, Regular, 12, colorGray)

	p.y -= 30
	p.canvas.DrawLine(m, p.y, right, p.y, 1, colorPrimary)
	p.y -= 30
}

func (b *Builder) summary(p *page, user domain.User, completed, total int) {
	m := b.opts.Margin
	l := b.opts.Labels
	p.canvas.DrawText(l.Summary, m, p.y, Bold, 16, colorText)
	p.y -= 25
	p.canvas.DrawText("- "+l.TotalPoints+": "+strconv.Itoa(user.Points), m+indent, p.y, Regular, 12, colorGray)
	p.y -= summaryLineSpace
	p.canvas.DrawText("- "+l.CurrentLevel+": "+strconv.Itoa(user.Level), m+indent, p.y, Regular, 12, colorGray)
	p.y -= summaryLineSpace
	p.canvas.DrawText(fmt.Sprintf(l.Completed, completed, total), m+indent, p.y, Regular, 12, colorGray)
	p.y -= 40
}

func (b *Builder) wrap(text string, style FontStyle, size, maxWidth float64) []string {
	return Wrap(text, maxWidth, func(s string) float64 { return b.measure.Width(s, style, size) })
}

func (b *Builder) activity(p *page, a domain.Activity) {
	m := b.opts.Margin
	l := b.opts.Labels
	content := b.opts.PageWidth - 2*m

	titleLines := b.wrap(a.Title, Bold, titleSize, content)
	if len(titleLines) == 0 {
		titleLines = []string{""}
	}
	p.ensure(float64(len(titleLines))*titleLineHeight + 2 + 25)
	for _, line := range titleLines {
		p.canvas.DrawText(line, m, p.y, Bold, titleSize, colorText)
		p.y -= titleLineHeight
	}
	p.y -= 2
	grade := fmt.Sprintf(l.Grade, a.Score/b.opts.PointsPerCorrect, a.TotalQuestions)
	p.canvas.DrawText(grade, m+indent, p.y, Regular, 11, colorGray)
	p.y -= 25

	for i, q := range a.Questions {
		answer, answered := a.UserAnswers[i]
		correct := answered && answer == q.CorrectAnswer
		shown := answer
		if !answered || answer == "" {
			shown = l.Unanswered
		}

		questionLines := b.wrap(fmt.Sprintf("%d. %s", i+1, q.Text), Regular, bodySize, content)
		answerLines := b.wrap(l.YourAnswer+": "+shown, Regular, bodySize, content-indent)
		var correctLines []string
		if !correct {
			correctLines = b.wrap(l.CorrectAnswer+": "+q.CorrectAnswer, Regular, bodySize, content-indent)
		}

		block := float64(len(questionLines)+len(answerLines)+len(correctLines))*lineHeight + questionPadding
		p.ensure(block)
		// A block taller than a whole page cannot be kept together; it flows line by line.
		oversized := block > b.opts.PageHeight-2*m

		answerColor := colorIncorrect
		if correct {
			answerColor = colorCorrect
		}
		b.lines(p, questionLines, m, colorText, oversized)
		b.lines(p, answerLines, m+indent, answerColor, oversized)
		b.lines(p, correctLines, m+indent, colorGray, oversized)
		p.y -= questionPadding
	}
	p.y -= activityGap
}

func (b *Builder) lines(p *page, lines []string, x float64, c Color, flow bool) {
	for _, line := range lines {
		if flow {
			p.ensure(lineHeight)
		}
		p.canvas.DrawText(line, x, p.y, Regular, bodySize, c)
		p.y -= lineHeight
	}
}
