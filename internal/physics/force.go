package physics

// Force is a vector quantity applied to an anchor.
type Force struct {
	Vec Vec2
}

// Pair returns the action/reaction pair (+v, -v).
func Pair(v Vec2) (Force, Force) {
	return Force{Vec: v}, Force{Vec: v.Neg()}
}

func (f Force) Scale(s float64) Force { return Force{Vec: f.Vec.Scale(s)} }
