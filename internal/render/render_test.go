package render

import (
	"bytes"
	"strings"
	"testing"

	"treasurehunt/internal/grid"
	"treasurehunt/internal/vm"
)

func TestGridReferenceLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := Grid(&buf, grid.Build()); err != nil {
		t.Fatalf("render grid: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != grid.Size {
		t.Fatalf("got %d lines, want %d", len(lines), grid.Size)
	}
	if got, want := lines[1], "░ ░ ░ ░ █ ░ ░ "; got != want {
		t.Fatalf("row 1: got %q want %q", got, want)
	}
	if got, want := lines[6], "░ ░ ░ P ░ ░ ░ "; got != want {
		t.Fatalf("row 6: got %q want %q", got, want)
	}
	if n := strings.Count(buf.String(), glyphTreasure); n != 5 {
		t.Fatalf("got %d treasures, want 5", n)
	}
}

func TestStepsRoundTrip(t *testing.T) {
	steps := []vm.Direction{vm.Up, vm.Right, vm.Down, vm.Left, vm.Up}
	s := Steps(steps)
	if s != "HPDLH" {
		t.Fatalf("got %q", s)
	}
	parsed, err := ParseSteps(s)
	if err != nil {
		t.Fatalf("parse steps: %v", err)
	}
	for i := range steps {
		if parsed[i] != steps[i] {
			t.Fatalf("step %d: got %v want %v", i, parsed[i], steps[i])
		}
	}
	if _, err := ParseSteps("HX"); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}

func TestProgramFormats(t *testing.T) {
	var p vm.Program
	p[0] = 0xC0
	p[1] = 0x41
	p[63] = 255

	list := Program(p)
	if !strings.HasPrefix(list, "[192, 65, 0") || !strings.HasSuffix(list, ", 255]") {
		t.Fatalf("unexpected list: %s", list)
	}

	for _, form := range []string{list, Hex(p)} {
		parsed, err := ParseProgram(form)
		if err != nil {
			t.Fatalf("parse %q: %v", form, err)
		}
		if parsed != p {
			t.Fatalf("parse %q: got %v", form, parsed)
		}
	}
}

func TestParseProgramShortList(t *testing.T) {
	p, err := ParseProgram("[195, 1]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p[0] != 195 || p[1] != 1 || p[2] != 0 {
		t.Fatalf("unexpected program: %v", p[:3])
	}
}

func TestParseProgramRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"abcd",
		"[256]",
		"[1, x]",
		strings.Repeat("zz", vm.ProgramSize),
		"[" + strings.Repeat("1, ", vm.ProgramSize) + "1]",
	}
	for _, tc := range cases {
		if _, err := ParseProgram(tc); err == nil {
			t.Fatalf("expected error for %q", tc)
		}
	}
}

func TestDisassemble(t *testing.T) {
	var p vm.Program
	p[0] = vm.Encode(vm.OpIncrement, 12)
	p[1] = vm.Encode(vm.OpDecrement, 3)
	p[2] = vm.Encode(vm.OpJump, 7)
	p[3] = vm.Encode(vm.OpMove, 5)

	lines := Disassemble(p)
	want := []string{"inc 12", "dec 3", "jmp 7", "mov right"}
	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("line %d: got %q want %q", i, lines[i], w)
		}
	}
	if len(lines) != vm.ProgramSize {
		t.Fatalf("got %d lines", len(lines))
	}
}
