package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"eduquest-service/internal/domain"
	"eduquest-service/internal/secret"

	"google.golang.org/genai"
)

// GenerateFunc performs one structured text completion and returns the raw JSON text.
type GenerateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

// GeminiSupplier generates questions with the Gemini API. The key is fetched
// from the secret provider on every call.
type GeminiSupplier struct {
	keys     secret.Provider
	model    string
	timeout  time.Duration
	generate GenerateFunc
}

func NewGeminiSupplier(keys secret.Provider, model string, timeout time.Duration) *GeminiSupplier {
	return NewGeminiSupplierWithGenerator(keys, model, timeout, generateWithGenAI)
}

// NewGeminiSupplierWithGenerator swaps the network call, mainly for tests.
func NewGeminiSupplierWithGenerator(keys secret.Provider, model string, timeout time.Duration, gen GenerateFunc) *GeminiSupplier {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiSupplier{keys: keys, model: model, timeout: timeout, generate: gen}
}

func (s *GeminiSupplier) Questions(ctx context.Context, req Request) ([]domain.Question, error) {
	key, err := s.keys.APIKey(ctx)
	if err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	text, err := s.generate(ctx, key, s.model, BuildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	qs, err := ParseQuestions(text)
	if err != nil {
		return nil, err
	}
	if err := Validate(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// BuildPrompt renders the generation prompt for a request.
func BuildPrompt(req Request) string {
	preface := req.Preface
	if preface == "" {
		preface = "Based on the following educational curriculum"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s, generate %d unique multiple-choice questions with %d options each.\n",
		preface, req.QuestionCount, req.OptionCount)
	b.WriteString("These questions must be in Spanish.\n\n")
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Learning Objective: %s\n\n", req.Objective)
	b.WriteString("The questions should test a student's understanding of the objective. ")
	b.WriteString("For each question, provide a brief explanation for the correct answer.\n")
	b.WriteString("Return the output as a JSON array that matches the specified schema.\n")
	return b.String()
}

// ParseQuestions decodes a completion into questions. Anything but a JSON
// array of question objects is malformed.
func ParseQuestions(text string) ([]domain.Question, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "[") {
		return nil, fmt.Errorf("response is not a list: %w", domain.ErrMalformedContent)
	}
	var qs []domain.Question
	if err := json.Unmarshal([]byte(text), &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %v: %w", err, domain.ErrMalformedContent)
	}
	return qs, nil
}

func questionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"questionText":  {Type: genai.TypeString, Description: "The question text in Spanish."},
				"options":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "The possible answers in Spanish."},
				"correctAnswer": {Type: genai.TypeString, Description: "The correct answer from the options array."},
				"explanation":   {Type: genai.TypeString, Description: "A brief explanation for why the answer is correct, in Spanish."},
			},
			Required: []string{"questionText", "options", "correctAnswer", "explanation"},
		},
	}
}

func generateWithGenAI(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   questionSchema(),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
