package content

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"eduquest-service/internal/domain"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

type fixtureFile struct {
	Set       string            `json:"set"`
	Version   string            `json:"version"`
	Questions []domain.Question `json:"questions"`
}

// FixtureSupplier serves the static, versioned question tables used when the
// live provider is unavailable.
type FixtureSupplier struct {
	sets     map[string][]domain.Question
	versions map[string]string
}

// NewFixtureSupplier loads every embedded fixture table and validates it.
func NewFixtureSupplier() (*FixtureSupplier, error) {
	s := &FixtureSupplier{
		sets:     make(map[string][]domain.Question),
		versions: make(map[string]string),
	}
	files, err := fs.Glob(fixtureFS, "fixtures/*.json")
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		raw, err := fixtureFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
		var f fixtureFile
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse fixture %s: %w", name, err)
		}
		if err := Validate(f.Questions); err != nil {
			return nil, fmt.Errorf("fixture %s: %w", name, err)
		}
		s.sets[f.Set] = f.Questions
		s.versions[f.Set] = f.Version
	}
	return s, nil
}

func (s *FixtureSupplier) Questions(_ context.Context, req Request) ([]domain.Question, error) {
	qs, ok := s.sets[req.FixtureSet]
	if !ok {
		return nil, fmt.Errorf("fixture set %q: %w", req.FixtureSet, domain.ErrNoQuestions)
	}
	return append([]domain.Question(nil), qs...), nil
}

// Version reports the content version of a fixture set, empty when unknown.
func (s *FixtureSupplier) Version(set string) string {
	return s.versions[set]
}
