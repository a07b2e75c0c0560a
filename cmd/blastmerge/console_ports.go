// Console implementations of the four callback ports (spec.md §4.11),
// grounded on the teacher's drainErrors/progress-bar wiring in
// cmd/dupedog/dedupe.go: a thin terminal adapter sits in main, the core
// never knows it's talking to a human.
package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/fsys"
	"github.com/ktsu-dev/blastmerge/internal/merge"
	"github.com/ktsu-dev/blastmerge/internal/ports"
	"github.com/ktsu-dev/blastmerge/internal/progress"
)

// consoleMergePort implements ports.MergePort by reading both sides from
// fs and driving merge.Engine with a per-block console prompt. In
// autoResolve mode (batch runs) no prompt is shown; every block is
// resolved by taking the incoming (right-hand) side, the same
// "later path wins" default the teacher's deduper applies via path
// priority order.
type consoleMergePort struct {
	fs          fsys.Filesystem
	engine      *merge.Engine
	in          *bufio.Reader
	out         io.Writer
	autoResolve bool
}

func newConsoleMergePort(fs fsys.Filesystem, in io.Reader, out io.Writer, autoResolve bool) *consoleMergePort {
	return &consoleMergePort{fs: fs, engine: merge.New(), in: bufio.NewReader(in), out: out, autoResolve: autoResolve}
}

func (m *consoleMergePort) Merge(leftPath, rightPath string, existing *core.LineSeq) (core.MergeResult, error) {
	var left core.LineSeq
	if existing != nil {
		left = *existing
	} else {
		lines, _, _, err := m.fs.ReadLines(leftPath)
		if err != nil {
			return core.MergeResult{}, err
		}
		left = lines
	}

	right, _, _, err := m.fs.ReadLines(rightPath)
	if err != nil {
		return core.MergeResult{}, err
	}

	label := rightPath
	if leftPath != "" {
		label = leftPath + " <-> " + rightPath
	}
	fmt.Fprintf(m.out, "\n--- merging %s ---\n", label)

	return m.engine.Merge(left, right, ports.BlockChoiceFunc(m.choose)), nil
}

func (m *consoleMergePort) choose(block core.Block, ctx core.BlockContext, idx int) core.BlockChoice {
	if m.autoResolve {
		return takeIncoming(block.Kind)
	}

	renderBlock(m.out, block, ctx, idx)
	for {
		fmt.Fprint(m.out, promptFor(block.Kind))
		line, readErr := m.in.ReadString('\n')
		choice, ok := parseChoice(block.Kind, strings.TrimSpace(line))
		if ok {
			return choice
		}
		if readErr != nil {
			return core.ChoiceCancel
		}
		fmt.Fprintln(m.out, "unrecognized choice, try again")
	}
}

// takeIncoming is the non-interactive default: always prefer the
// right-hand (incoming) side of a change block.
func takeIncoming(kind core.BlockKind) core.BlockChoice {
	switch kind {
	case core.BlockInsert:
		return core.ChoiceInclude
	case core.BlockDelete:
		return core.ChoiceRemove
	case core.BlockReplace:
		return core.ChoiceUseB
	default:
		return core.ChoiceCancel
	}
}

func renderBlock(out io.Writer, block core.Block, ctx core.BlockContext, idx int) {
	fmt.Fprintf(out, "\nblock %d (%s):\n", idx, block.Kind)
	for _, l := range ctx.BeforeA {
		fmt.Fprintf(out, "  %s\n", l)
	}
	switch block.Kind {
	case core.BlockInsert:
		for _, l := range block.LinesB {
			fmt.Fprintf(out, "+ %s\n", l)
		}
	case core.BlockDelete:
		for _, l := range block.LinesA {
			fmt.Fprintf(out, "- %s\n", l)
		}
	case core.BlockReplace:
		for _, l := range block.LinesA {
			fmt.Fprintf(out, "- %s\n", l)
		}
		for _, l := range block.LinesB {
			fmt.Fprintf(out, "+ %s\n", l)
		}
	}
	for _, l := range ctx.AfterA {
		fmt.Fprintf(out, "  %s\n", l)
	}
}

func promptFor(kind core.BlockKind) string {
	switch kind {
	case core.BlockInsert:
		return "[a]dd, [s]kip, [c]ancel? "
	case core.BlockDelete:
		return "[k]eep, [r]emove, [c]ancel? "
	case core.BlockReplace:
		return "use [1] left, [2] right, [b]oth, [s]kip, [c]ancel? "
	default:
		return "[c]ancel? "
	}
}

func parseChoice(kind core.BlockKind, answer string) (core.BlockChoice, bool) {
	if answer == "c" {
		return core.ChoiceCancel, true
	}
	switch kind {
	case core.BlockInsert:
		switch answer {
		case "a":
			return core.ChoiceInclude, true
		case "s":
			return core.ChoiceSkip, true
		}
	case core.BlockDelete:
		switch answer {
		case "k":
			return core.ChoiceKeep, true
		case "r":
			return core.ChoiceRemove, true
		}
	case core.BlockReplace:
		switch answer {
		case "1":
			return core.ChoiceUseA, true
		case "2":
			return core.ChoiceUseB, true
		case "b":
			return core.ChoiceUseBoth, true
		case "s":
			return core.ChoiceSkip, true
		}
	}
	return core.ChoiceCancel, false
}

// consoleStatusPort renders StatusEvents to a progress.Bar's description
// line, the same role the teacher's progress bar plays during scan/
// screen/verify.
type consoleStatusPort struct {
	bar *progress.Bar
	out io.Writer
}

func newConsoleStatusPort(bar *progress.Bar, out io.Writer) *consoleStatusPort {
	return &consoleStatusPort{bar: bar, out: out}
}

func (p *consoleStatusPort) Status(event ports.StatusEvent) {
	p.bar.Describe(statusLine{event})
	if event.Kind == core.EventCollision {
		fmt.Fprintf(p.out, "warning: %s\n", event.Message)
	}
}

type statusLine struct {
	event ports.StatusEvent
}

func (s statusLine) String() string {
	if s.event.Iteration > 0 {
		return fmt.Sprintf("%s (iteration %d)", s.event.Message, s.event.Iteration)
	}
	return s.event.Message
}

// consoleContinuePort prompts the user after every successful merge step
// when more than one version remains to absorb; batch runs always pass a
// ContinueFunc(func() bool { return true }) instead of this type, since
// phase 4 must not block on a human between patterns.
type consoleContinuePort struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsoleContinuePort(in io.Reader, out io.Writer) *consoleContinuePort {
	return &consoleContinuePort{in: bufio.NewReader(in), out: out}
}

func (c *consoleContinuePort) Continue() bool {
	fmt.Fprint(c.out, "merge the next closest version? [Y/n] ")
	line, _ := c.in.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}
