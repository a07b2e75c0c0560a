package progress

import "testing"

type stringerStub string

func (s stringerStub) String() string { return string(s) }

func TestDisabledBarIsNoOp(t *testing.T) {
	bar := New(false, 10)
	bar.Set(5)
	bar.Describe(stringerStub("phase"))
	bar.Finish(stringerStub("done"))
}

func TestEnabledBarAcceptsCalls(t *testing.T) {
	bar := New(true, 10)
	bar.Set(3)
	bar.Describe(stringerStub("phase"))
	bar.Finish(stringerStub("done"))
}

func TestEnabledSpinnerMode(t *testing.T) {
	bar := New(true, -1)
	bar.Set(1)
	bar.Describe(stringerStub("gathering"))
}
