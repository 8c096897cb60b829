package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eduquest-service/internal/app"
	"eduquest-service/internal/content"
	"eduquest-service/internal/domain"
	"eduquest-service/internal/infra/memory"
	"eduquest-service/internal/report"
	"eduquest-service/internal/report/fonts"
	"eduquest-service/internal/report/pdf"
	"eduquest-service/internal/secret"
)

type stubSupplier struct {
	qs  []domain.Question
	err error
}

func (s stubSupplier) Questions(context.Context, content.Request) ([]domain.Question, error) {
	return s.qs, s.err
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Text: "¿Cuál es la mediana de 1, 3, 5?", Options: []string{"1", "3", "5", "9"}, CorrectAnswer: "3"},
		{Text: "¿Qué percentil es Q1?", Options: []string{"P10", "P25", "P50", "P75"}, CorrectAnswer: "P25"},
	}
}

func newTestServer(t *testing.T, supplier content.Supplier) (*httptest.Server, *app.QuizService) {
	t.Helper()
	metrics, err := fonts.NewMetrics()
	if err != nil {
		t.Fatalf("font metrics: %v", err)
	}
	builder := report.NewBuilder(pdf.New, metrics, nil, report.Options{AppName: "EduQuest", Footer: "EduQuest"}, nil)

	service := app.NewQuizService(
		app.NewStore(memory.NewKV(), "eduquest"),
		memory.NewSessionStore(),
		supplier,
		builder,
		app.Options{Courses: []string{"4°AHC", "4°ATP"}},
		nil, nil,
	)
	srv := httptest.NewServer(NewServer(service, secret.NewEnvProvider("EDUQUEST_TEST_API_KEY"), nil, nil).Router())
	t.Cleanup(srv.Close)
	return srv, service
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func call(t *testing.T, method, url string, body interface{}, wantStatus int, out interface{}) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d (%+v)", method, url, wantStatus, resp.StatusCode, env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}
