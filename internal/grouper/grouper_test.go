package grouper

import (
	"io"
	"strings"
	"testing"

	"github.com/ktsu-dev/blastmerge/internal/core"
)

// fakeFS is an in-memory fsys.Filesystem for grouper tests; it never needs
// Enumerate/Write/Exists/IsDir, which panic if called.
type fakeFS struct {
	content map[string]string
}

func (f *fakeFS) Enumerate(string, bool, func(string) bool, func(error)) error {
	panic("not used by grouper")
}

func (f *fakeFS) ReadLines(path string) (core.LineSeq, bool, bool, error) {
	raw := f.content[path]
	hadCRLF := strings.Contains(raw, "\r\n")
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	hadTrailing := strings.HasSuffix(normalized, "\n")
	trimmed := strings.TrimSuffix(normalized, "\n")
	var lines core.LineSeq
	if trimmed != "" {
		lines = strings.Split(trimmed, "\n")
	}
	return lines, hadCRLF, hadTrailing, nil
}

func (f *fakeFS) ReadBytesStream(path string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.content[path])), nil
}

func (f *fakeFS) Write(string, core.LineSeq, bool, bool) error { panic("not used by grouper") }
func (f *fakeFS) Exists(string) bool                           { panic("not used by grouper") }
func (f *fakeFS) IsDir(string) bool                             { panic("not used by grouper") }

func TestGroupPartitionsByContent(t *testing.T) {
	fs := &fakeFS{content: map[string]string{
		"a": "alpha\nbeta\n",
		"b": "alpha\nbeta\n",
		"c": "gamma\n",
	}}
	result := Group(fs, []string{"a", "b", "c"}, 2, nil, nil)
	if len(result.HashErrors) != 0 {
		t.Fatalf("unexpected hash errors: %v", result.HashErrors)
	}
	if result.Versions.Len() != 2 {
		t.Fatalf("got %d groups, want 2: %+v", result.Versions.Len(), result.Versions.Groups)
	}
	// Larger group (2 paths) sorts first.
	if len(result.Versions.Groups[0].Paths) != 2 {
		t.Errorf("first group has %d paths, want 2", len(result.Versions.Groups[0].Paths))
	}
}

func TestGroupAccountsForEveryPath(t *testing.T) {
	fs := &fakeFS{content: map[string]string{"a": "x\n"}}
	// "missing" has no entry in fakeFS.content, so it reads as empty
	// content, landing in its own bucket distinct from "a".
	result := Group(fs, []string{"a", "missing"}, 2, nil, nil)
	if len(result.HashErrors) != 0 {
		t.Fatalf("unexpected hash errors: %v", result.HashErrors)
	}
	total := 0
	for _, g := range result.Versions.Groups {
		total += len(g.Paths)
	}
	if total != 2 {
		t.Errorf("total grouped paths = %d, want 2", total)
	}
	if result.Versions.Len() != 2 {
		t.Errorf("got %d groups, want 2 (distinct content)", result.Versions.Len())
	}
}
