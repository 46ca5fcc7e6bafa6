package export

import (
	"strings"
	"testing"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
	"github.com/san-kum/springbox/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, viz.ThemeMinimal, 1) != "" {
		t.Error("nil canvas should give empty output")
	}
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0, viz.InkSpring)
	c.Set(7, 7, viz.InkStatic)

	out := CanvasToSVG(c, viz.ThemeCyberpunk, 2)
	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(out, `width="16" height="16"`) {
		t.Errorf("unexpected size in %s", out)
	}
	if !strings.Contains(out, string(viz.ThemeCyberpunk.Primary)) || !strings.Contains(out, string(viz.ThemeCyberpunk.Success)) {
		t.Error("dots should carry their ink colours")
	}
}

func TestSnapshotToSVG(t *testing.T) {
	root := sim.AnchorView{Position: physics.V(0, 0), Radius: 0.1, Mass: 1, Mode: physics.Static}
	bob := sim.AnchorView{Position: physics.V(0, -1), Radius: 0.1, Mass: 1}
	snap := sim.Snapshot{
		Anchors: []sim.AnchorView{root, bob},
		Springs: []sim.SpringView{{StartPos: root.Position, EndPos: bob.Position, Law: physics.Linear, Stiffness: 8}},
	}

	out := SnapshotToSVG(snap, 200, 200, viz.ThemeOcean)
	if !strings.HasSuffix(out, "</svg>") {
		t.Error("svg not closed")
	}
	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("expected 2 anchors, got %d", n)
	}
	if n := strings.Count(out, "<polyline"); n != 1 {
		t.Errorf("expected 1 spring, got %d", n)
	}

	empty := SnapshotToSVG(sim.Snapshot{}, 100, 100, viz.ThemeOcean)
	if strings.Contains(empty, "<circle") || !strings.HasSuffix(empty, "</svg>") {
		t.Errorf("unexpected empty scene output %s", empty)
	}
}

func TestFit_KeepsYUp(t *testing.T) {
	f := fit(physics.V(0, 0), physics.V(1, 1), 100, 100)
	_, yLow := f.point(physics.V(0, 0))
	_, yHigh := f.point(physics.V(0, 1))
	if yHigh >= yLow {
		t.Errorf("higher world y should be nearer the top: %f vs %f", yHigh, yLow)
	}
	x0, _ := f.point(physics.V(0, 0))
	x1, _ := f.point(physics.V(1, 0))
	if x0 < 0 || x1 > 100 || x1 <= x0 {
		t.Errorf("points outside the image: %f %f", x0, x1)
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	if TrajectoryToSVG([]physics.Vec2{{}}, 10, 10, "#fff") != "" {
		t.Error("a single point is not a path")
	}
	out := TrajectoryToSVG([]physics.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}, 100, 50, "#ff0000")
	if strings.Count(out, " L") != 2 {
		t.Errorf("expected two line segments in %s", out)
	}
	if !strings.Contains(out, `stroke="#ff0000"`) {
		t.Error("stroke colour missing")
	}
}
