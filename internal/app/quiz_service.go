package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"eduquest-service/internal/content"
	"eduquest-service/internal/domain"
	"eduquest-service/internal/metrics"
	"eduquest-service/internal/pkg/logger"
	"eduquest-service/internal/report"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SessionRepository abstracts where active quiz sessions live (in-memory, Redis, etc).
type SessionRepository interface {
	Put(ctx context.Context, id string, session *Session) error
	Get(ctx context.Context, id string) (*Session, bool)
	Delete(ctx context.Context, id string)
}

// ReportBuilder renders a progress report document.
type ReportBuilder interface {
	Build(ctx context.Context, user domain.User, activities []domain.Activity) (report.Document, error)
}

type Options struct {
	PointsPerCorrect int
	PointsToLevelUp  int
	Courses          []string
}

// LoginRequest is the data collected by the login form.
type LoginRequest struct {
	Name           string `json:"name" validate:"required,max=80"`
	Course         string `json:"course" validate:"required,course"`
	ProfilePicture string `json:"profilePic" validate:"omitempty,datauri|url"`
}

// Dashboard is the learner's activity list with completion progress.
type Dashboard struct {
	User       domain.User       `json:"user"`
	Activities []domain.Activity `json:"activities"`
	Progress   float64           `json:"progress"`
	Completed  int               `json:"completed"`
}

// StartResult identifies a newly started quiz session.
type StartResult struct {
	SessionID string   `json:"sessionId"`
	Snapshot  Snapshot `json:"snapshot"`
}

// FinishResult is the outcome of merging a finished session into the profile.
type FinishResult struct {
	Activity domain.Activity `json:"activity"`
	User     domain.User     `json:"user"`
	Correct  int             `json:"correct"`
	Awarded  int             `json:"awarded"`
	LevelUp  bool            `json:"levelUp"`
}

// QuizService owns every persistence write: sessions only compute results and
// the service merges them into the stored profile.
type QuizService struct {
	store     *Store
	sessions  SessionRepository
	questions content.Supplier
	reports   ReportBuilder
	opts      Options
	validate  *validator.Validate
	log       *logger.Logger
	metrics   *metrics.Metrics

	// mu serializes read-modify-write cycles over the stored profile and
	// access to individual sessions.
	mu        sync.Mutex
	reporting atomic.Bool
}

func NewQuizService(store *Store, sessions SessionRepository, questions content.Supplier, reports ReportBuilder, opts Options, log *logger.Logger, m *metrics.Metrics) *QuizService {
	if opts.PointsPerCorrect <= 0 {
		opts.PointsPerCorrect = domain.PointsPerCorrectAnswer
	}
	if opts.PointsToLevelUp <= 0 {
		opts.PointsToLevelUp = domain.PointsToLevelUp
	}
	if log == nil {
		log = logger.Nop()
	}

	courses := make(map[string]struct{}, len(opts.Courses))
	for _, c := range opts.Courses {
		courses[c] = struct{}{}
	}
	v := validator.New()
	_ = v.RegisterValidation("course", func(fl validator.FieldLevel) bool {
		if len(courses) == 0 {
			return true
		}
		_, ok := courses[fl.Field().String()]
		return ok
	})

	return &QuizService{
		store:     store,
		sessions:  sessions,
		questions: questions,
		reports:   reports,
		opts:      opts,
		validate:  v,
		log:       log.With("component", "quiz_service"),
		metrics:   m,
	}
}

// Profile returns the logged-in learner or ErrNoProfile.
func (s *QuizService) Profile(ctx context.Context) (domain.User, error) {
	return s.store.LoadUser(ctx)
}

// Login creates a fresh profile and seeds the activity catalog.
func (s *QuizService) Login(ctx context.Context, req LoginRequest) (domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ProfilePicture = strings.TrimSpace(req.ProfilePicture)
	if err := s.validate.Struct(req); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrInvalidProfile, err)
	}

	user := domain.User{
		Name:           req.Name,
		Course:         req.Course,
		ProfilePicture: req.ProfilePicture,
		Points:         0,
		Level:          domain.LevelFor(0, s.opts.PointsToLevelUp),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SaveUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	if err := s.store.SaveActivities(ctx, domain.SeedActivities()); err != nil {
		return domain.User{}, err
	}
	s.log.Info("learner logged in", "course", user.Course)
	return user, nil
}

// Logout forgets the profile and its activities.
func (s *QuizService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clear(ctx)
}

// Dashboard loads the activity list, seeding the catalog the first time.
func (s *QuizService) Dashboard(ctx context.Context) (Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.store.LoadUser(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	activities, err := s.activitiesLocked(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	completed := 0
	for _, a := range activities {
		if a.Completed {
			completed++
		}
	}
	return Dashboard{
		User:       user,
		Activities: activities,
		Progress:   domain.Progress(activities),
		Completed:  completed,
	}, nil
}

func (s *QuizService) activitiesLocked(ctx context.Context) ([]domain.Activity, error) {
	activities, err := s.store.LoadActivities(ctx)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = domain.SeedActivities()
		if err := s.store.SaveActivities(ctx, activities); err != nil {
			return nil, err
		}
	}
	return activities, nil
}

// StartActivity opens a quiz session. Stored questions are reused; otherwise
// the question supplier is asked once. When no questions can be obtained the
// NoQuestions snapshot is returned together with ErrNoQuestions and no session
// is registered.
func (s *QuizService) StartActivity(ctx context.Context, activityID string) (StartResult, error) {
	s.mu.Lock()
	if _, err := s.store.LoadUser(ctx); err != nil {
		s.mu.Unlock()
		return StartResult{}, err
	}
	activities, err := s.activitiesLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return StartResult{}, err
	}

	var activity *domain.Activity
	for i := range activities {
		if activities[i].ID == activityID {
			activity = &activities[i]
			break
		}
	}
	if activity == nil {
		return StartResult{}, domain.ErrActivityNotFound
	}

	session := NewSession(*activity, s.opts.PointsPerCorrect)
	if session.State() == StateLoading {
		qs, err := s.fetchQuestions(ctx, *activity)
		if err != nil {
			return StartResult{}, err
		}
		if snap, err := session.SupplyQuestions(qs); err != nil {
			if errors.Is(err, domain.ErrNoQuestions) {
				s.log.Warn("no questions available", "activity", activityID)
			}
			return StartResult{Snapshot: snap}, err
		}
	}

	id := uuid.NewString()
	if err := s.sessions.Put(ctx, id, session); err != nil {
		s.log.Warn("session marker write failed", "session", id, "error", err)
	}
	s.metrics.SessionStarted()
	s.log.Debug("quiz session started", "session", id, "activity", activityID, "questions", session.Snapshot().Total)
	return StartResult{SessionID: id, Snapshot: session.Snapshot()}, nil
}

func (s *QuizService) fetchQuestions(ctx context.Context, activity domain.Activity) ([]domain.Question, error) {
	def, ok := domain.DefinitionFor(activity.ID)
	if !ok {
		def = domain.ActivityDefinition{
			ID:            activity.ID,
			Title:         activity.Title,
			Objective:     activity.Objective,
			OptionCount:   4,
			QuestionCount: 15,
		}
	}
	qs, err := s.questions.Questions(ctx, content.RequestFor(def))
	if errors.Is(err, domain.ErrNoQuestions) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load questions for %s: %w", activity.ID, err)
	}
	return qs, nil
}

// Session returns the current snapshot of an active session.
func (s *QuizService) Session(ctx context.Context, sessionID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Answer records the learner's choice for the current question.
func (s *QuizService) Answer(ctx context.Context, sessionID, option string) (domain.AnswerOutcome, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return domain.AnswerOutcome{}, Snapshot{}, domain.ErrSessionNotFound
	}
	outcome, err := session.Answer(option)
	return outcome, session.Snapshot(), err
}

// Advance moves the session to the next question or to its results.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Advance()
}

// Finish merges a session in Results into the stored activity list and
// credits the score to the learner. The session is closed afterwards.
func (s *QuizService) Finish(ctx context.Context, sessionID string) (FinishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return FinishResult{}, domain.ErrSessionNotFound
	}
	finished, err := session.Result()
	if err != nil {
		return FinishResult{}, err
	}

	user, err := s.store.LoadUser(ctx)
	if err != nil {
		return FinishResult{}, err
	}
	activities, err := s.activitiesLocked(ctx)
	if err != nil {
		return FinishResult{}, err
	}
	previous := append([]domain.Activity(nil), activities...)
	merged := false
	for i := range activities {
		if activities[i].ID == finished.ID {
			activities[i] = finished
			merged = true
			break
		}
	}
	if !merged {
		activities = append(activities, finished)
	}

	before := user.Level
	user.AddPoints(finished.Score, s.opts.PointsToLevelUp)

	if err := s.store.SaveActivities(ctx, activities); err != nil {
		return FinishResult{}, err
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		// the activity must not read as completed without its points
		if rerr := s.store.SaveActivities(ctx, previous); rerr != nil {
			s.log.Error("restoring activities failed", "activity", finished.ID, "error", rerr)
		}
		return FinishResult{}, err
	}

	s.sessions.Delete(ctx, sessionID)
	s.metrics.SessionEnded()
	s.metrics.QuizCompleted(finished.Score)
	s.log.Info("activity completed", "activity", finished.ID, "score", finished.Score, "points", user.Points, "level", user.Level)

	return FinishResult{
		Activity: finished,
		User:     user,
		Correct:  finished.Score / s.opts.PointsPerCorrect,
		Awarded:  finished.Score,
		LevelUp:  user.Level > before,
	}, nil
}

// Abandon drops an unfinished session without touching the profile.
func (s *QuizService) Abandon(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions.Get(ctx, sessionID); !ok {
		return
	}
	s.sessions.Delete(ctx, sessionID)
	s.metrics.SessionEnded()
}

// Report builds the progress report. Only one build runs at a time; a
// concurrent call gets ErrReportInProgress.
func (s *QuizService) Report(ctx context.Context) (report.Document, error) {
	if !s.reporting.CompareAndSwap(false, true) {
		return report.Document{}, domain.ErrReportInProgress
	}
	defer s.reporting.Store(false)

	s.mu.Lock()
	user, err := s.store.LoadUser(ctx)
	var activities []domain.Activity
	if err == nil {
		activities, err = s.activitiesLocked(ctx)
	}
	s.mu.Unlock()
	if err != nil {
		return report.Document{}, err
	}

	doc, err := s.reports.Build(ctx, user, activities)
	s.metrics.ReportBuilt(doc.Pages, err)
	if err != nil {
		s.log.Error("report generation failed", "error", err)
		return report.Document{}, err
	}
	return doc, nil
}
