package models

// StandardGravity converts m/s² to g-units.
const StandardGravity = 9.81

// Reading holds one 3-axis user-acceleration reading delivered by a
// motion service. Gravity is already removed.
type Reading struct {
	X float64 `json:"x"` // m/s²
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ZInG returns the vertical component expressed in g.
func (r Reading) ZInG() float64 {
	return r.Z / StandardGravity
}
