package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromCore(core)

	l.With("component", "report").Warn("skipping profile picture", "error", "bad png")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["component"] != "report" || ctx["error"] != "bad png" {
		t.Fatalf("unexpected fields %v", ctx)
	}
	if entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[0].Level)
	}
}

func TestNewLevels(t *testing.T) {
	cases := []struct {
		opts Options
		want zapcore.Level
	}{
		{Options{Mode: "dev"}, zapcore.DebugLevel},
		{Options{Mode: "prod"}, zapcore.InfoLevel},
		{Options{Mode: "prod", Level: "warn"}, zapcore.WarnLevel},
		{Options{Level: "ERROR", Service: "eduquest"}, zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		l, err := New(tc.opts)
		if err != nil {
			t.Fatalf("%+v: %v", tc.opts, err)
		}
		if l.Level() != tc.want {
			t.Fatalf("%+v: expected %s, got %s", tc.opts, tc.want, l.Level())
		}
	}

	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestSetLevelReachesChildren(t *testing.T) {
	l, err := New(Options{Mode: "prod"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	child := l.With("component", "http")
	l.SetLevel(zapcore.ErrorLevel)
	if child.Level() != zapcore.ErrorLevel {
		t.Fatalf("expected child to follow parent level, got %s", child.Level())
	}
	Nop().Error("discarded")
}
