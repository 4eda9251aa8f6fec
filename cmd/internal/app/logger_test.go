package app

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLogger_LevelParsing(t *testing.T) {
	cases := []struct {
		in        string
		debugOn   bool
		warnOn    bool
		infoLevel bool
	}{
		{in: "debug", debugOn: true, warnOn: true},
		{in: "info", debugOn: false, warnOn: true},
		{in: "WARN", debugOn: false, warnOn: true},
		{in: "error", debugOn: false, warnOn: false},
		{in: "unknown", debugOn: false, warnOn: true},
	}

	ctx := context.Background()
	for _, tc := range cases {
		log := NewLogger(tc.in)
		if got := log.Enabled(ctx, slog.LevelDebug); got != tc.debugOn {
			t.Fatalf("level=%q debug enabled=%v want=%v", tc.in, got, tc.debugOn)
		}
		if got := log.Enabled(ctx, slog.LevelWarn); got != tc.warnOn {
			t.Fatalf("level=%q warn enabled=%v want=%v", tc.in, got, tc.warnOn)
		}
	}
}

func TestServiceLogger_TagsChild(t *testing.T) {
	base := discardLogger()
	child := ServiceLogger(base, "sweeper")
	if child == base {
		t.Fatalf("expected a derived logger")
	}
}
