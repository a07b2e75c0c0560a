package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestPathErrorIncludesPathAndOp(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	PathError(logger, "hash", "/tmp/a.txt", errors.New("permission denied"))

	out := buf.String()
	if !strings.Contains(out, "/tmp/a.txt") {
		t.Errorf("log output missing path: %q", out)
	}
	if !strings.Contains(out, "hash") {
		t.Errorf("log output missing op: %q", out)
	}
}

func TestCollisionIncludesBothPaths(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Collision(logger, "/a", "/b")

	out := buf.String()
	if !strings.Contains(out, "/a") || !strings.Contains(out, "/b") {
		t.Errorf("log output missing a collision path: %q", out)
	}
}
