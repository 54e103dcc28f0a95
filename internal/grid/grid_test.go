package grid

import "testing"

func TestBuildReferenceLayout(t *testing.T) {
	g := Build()
	if g.Rows() != Size || g.Columns() != Size {
		t.Fatalf("unexpected dimensions: rows=%d columns=%d", g.Rows(), g.Columns())
	}

	starts := 0
	treasures := 0
	for _, row := range g {
		for _, tile := range row {
			switch tile {
			case PlayerStart:
				starts++
			case Treasure:
				treasures++
			}
		}
	}
	if starts != 1 {
		t.Fatalf("expected exactly one player start, got %d", starts)
	}
	if treasures != 5 {
		t.Fatalf("expected 5 treasures, got %d", treasures)
	}
}

func TestSurveyReferenceLayout(t *testing.T) {
	layout := Survey(Build())
	if !layout.HasStart {
		t.Fatal("expected start tile")
	}
	if layout.Start != (Position{X: 3, Y: 6}) {
		t.Fatalf("unexpected start: %+v", layout.Start)
	}
	if layout.Treasures != 5 {
		t.Fatalf("unexpected treasure count: %d", layout.Treasures)
	}
}

func TestBuildIsDeterministicAndUnshared(t *testing.T) {
	a := Build()
	b := Build()
	a.Set(Position{X: 4, Y: 1}, Empty)
	if b.At(Position{X: 4, Y: 1}) != Treasure {
		t.Fatal("expected independent allocations per Build call")
	}
}

func TestCloneIsDeep(t *testing.T) {
	src := Build()
	clone := src.Clone()
	clone.Set(Position{X: 2, Y: 2}, Empty)
	if src.At(Position{X: 2, Y: 2}) != Treasure {
		t.Fatal("clone mutation leaked into source grid")
	}
}

func TestContains(t *testing.T) {
	g := Build()
	cases := []struct {
		pos  Position
		want bool
	}{
		{Position{X: 0, Y: 0}, true},
		{Position{X: 6, Y: 6}, true},
		{Position{X: -1, Y: 3}, false},
		{Position{X: 3, Y: -1}, false},
		{Position{X: 7, Y: 0}, false},
		{Position{X: 0, Y: 7}, false},
	}
	for _, tc := range cases {
		if got := g.Contains(tc.pos); got != tc.want {
			t.Fatalf("contains %+v: got=%t want=%t", tc.pos, got, tc.want)
		}
	}
}

func TestSurveyWithoutStart(t *testing.T) {
	layout := Survey(New(2, 2))
	if layout.HasStart || layout.Treasures != 0 {
		t.Fatalf("unexpected layout for empty grid: %+v", layout)
	}
}
