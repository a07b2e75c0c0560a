package orchestrator

import (
	"io"
	"strings"
	"testing"

	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/merge"
	"github.com/ktsu-dev/blastmerge/internal/ports"
)

type fakeFS struct {
	content map[string]core.LineSeq
	written map[string]core.LineSeq
}

func newFakeFS(content map[string]core.LineSeq) *fakeFS {
	return &fakeFS{content: content, written: make(map[string]core.LineSeq)}
}

func (f *fakeFS) Enumerate(string, bool, func(string) bool, func(error)) error {
	panic("not used by orchestrator")
}

func (f *fakeFS) ReadLines(path string) (core.LineSeq, bool, bool, error) {
	return f.content[path], false, true, nil
}

func (f *fakeFS) ReadBytesStream(path string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(strings.Join(f.content[path], "\n"))), nil
}

func (f *fakeFS) Write(path string, lines core.LineSeq, _, _ bool) error {
	f.written[path] = lines
	f.content[path] = lines
	return nil
}

func (f *fakeFS) Exists(path string) bool { _, ok := f.content[path]; return ok }
func (f *fakeFS) IsDir(string) bool       { return false }

// alwaysAdoptRight includes every insert, keeps every delete and takes the
// right side of every replace, so repeated merges keep every line either
// side has and converge on the longest (most-extended) input, matching
// scenario 4 of spec.md §8.
type alwaysAdoptRight struct{ fs *fakeFS }

func (m *alwaysAdoptRight) Merge(leftPath, rightPath string, existing *core.LineSeq) (core.MergeResult, error) {
	var left core.LineSeq
	if existing != nil {
		left = *existing
	} else {
		left = m.fs.content[leftPath]
	}
	right := m.fs.content[rightPath]

	engine := merge.New()
	choose := ports.BlockChoiceFunc(func(block core.Block, _ core.BlockContext, _ int) core.BlockChoice {
		switch block.Kind {
		case core.BlockInsert:
			return core.ChoiceInclude
		case core.BlockDelete:
			return core.ChoiceKeep
		case core.BlockReplace:
			return core.ChoiceUseB
		default:
			return core.ChoiceCancel
		}
	})
	return engine.Merge(left, right, choose), nil
}

func TestRunNoopOnSingleVersion(t *testing.T) {
	vs := core.NewVersionSet([]core.FileGroup{{Hash: "h1", Paths: []string{"a", "b"}}})
	o := New(newFakeFS(nil), 2)
	result, _ := o.Run("pattern", vs, Ports{})
	if !result.Success {
		t.Fatalf("expected success for single-version pattern, got %+v", result)
	}
	if result.UniqueVersions != 1 {
		t.Errorf("UniqueVersions = %d, want 1", result.UniqueVersions)
	}
}

func TestRunIterativeThreeVersions(t *testing.T) {
	fs := newFakeFS(map[string]core.LineSeq{
		"A": {"1", "2", "3"},
		"B": {"1", "2", "3", "4"},
		"C": {"1", "2", "3", "4", "5"},
	})
	vs := core.NewVersionSet([]core.FileGroup{
		core.NewFileGroup("hA", []string{"A"}, false, true),
		core.NewFileGroup("hB", []string{"B"}, false, true),
		core.NewFileGroup("hC", []string{"C"}, false, true),
	})

	o := New(fs, 2)
	p := Ports{
		Merge:    &alwaysAdoptRight{fs: fs},
		Status:   ports.StatusFunc(func(ports.StatusEvent) {}),
		Continue: ports.ContinueFunc(func() bool { return true }),
	}

	result, state := o.Run("pattern", vs, p)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	want := core.LineSeq{"1", "2", "3", "4", "5"}
	for _, path := range []string{"A", "B", "C"} {
		if !fs.content[path].Equal(want) {
			t.Errorf("content[%s] = %v, want %v", path, fs.content[path], want)
		}
	}
	if state.Remaining.Len() != 0 {
		t.Errorf("remaining groups = %d, want 0", state.Remaining.Len())
	}
	if state.CompletedMerges != 2 {
		t.Errorf("completed merges = %d, want 2", state.CompletedMerges)
	}
}

func TestRunCancellation(t *testing.T) {
	fs := newFakeFS(map[string]core.LineSeq{
		"A": {"k=1"},
		"B": {"k=2"},
	})
	vs := core.NewVersionSet([]core.FileGroup{
		core.NewFileGroup("hA", []string{"A"}, false, true),
		core.NewFileGroup("hB", []string{"B"}, false, true),
	})

	o := New(fs, 2)
	p := Ports{
		Merge: ports.MergePort(cancellingMergePort{}),
		Status: ports.StatusFunc(func(ports.StatusEvent) {}),
		Continue: ports.ContinueFunc(func() bool { return true }),
	}

	result, _ := o.Run("pattern", vs, p)
	if result.Success {
		t.Fatal("expected cancellation to report failure")
	}
	if len(fs.written) != 0 {
		t.Error("cancelled session should not write any file")
	}
}

// TestRunSurvivesHashCollisionSplit guards against the data-loss bug where
// two FileGroups produced by a verified hash collision (grouper's
// byte-compare fallback) share one FileHash: consuming one of them must
// not also drop its collision sibling out of state.Remaining.
func TestRunSurvivesHashCollisionSplit(t *testing.T) {
	fs := newFakeFS(map[string]core.LineSeq{
		"A": {"1", "2", "3"},
		"D": {"9", "9", "9"}, // shares A's hash in this fixture but not its content
		"B": {"1", "2", "3", "4"},
	})
	vs := core.NewVersionSet([]core.FileGroup{
		core.NewFileGroup("collidingHash", []string{"A"}, false, true),
		core.NewFileGroup("collidingHash", []string{"D"}, false, true),
		core.NewFileGroup("hB", []string{"B"}, false, true),
	})

	o := New(fs, 2)
	p := Ports{
		Merge:    &alwaysAdoptRight{fs: fs},
		Status:   ports.StatusFunc(func(ports.StatusEvent) {}),
		Continue: ports.ContinueFunc(func() bool { return true }),
	}

	result, state := o.Run("pattern", vs, p)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if state.Remaining.Len() != 0 {
		t.Errorf("remaining groups = %d, want 0 (every group, including the collision sibling, must be consumed)", state.Remaining.Len())
	}
	if state.CompletedMerges != 2 {
		t.Errorf("completed merges = %d, want 2; the collision sibling was likely dropped instead of merged", state.CompletedMerges)
	}
	for _, path := range []string{"A", "B", "D"} {
		if _, ok := fs.written[path]; !ok {
			t.Errorf("expected %s to be written back", path)
		}
	}
}

type cancellingMergePort struct{}

func (cancellingMergePort) Merge(string, string, *core.LineSeq) (core.MergeResult, error) {
	return core.MergeResult{Cancelled: true}, nil
}
