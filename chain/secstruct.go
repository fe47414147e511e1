package chain

import "math"

// AssignSecondaryStructure produces a coarse per-residue secondary
// structure code ('H' helix, 'E' strand, 'C' coil) from backbone geometry
// alone. This is the minimal internal heuristic the alignment primitives
// need to have *some* sec_vec-shaped input to score against; a faithful
// secondary-structure derivation is explicitly out of scope (spec.md
// §1(iii)), so this never needs to be more than "plausible enough to bias
// the alignment scoring function towards the right shape".
//
// The classification looks at distances among four consecutive backbone
// points i-1..i+2: when the i-1/i+1, i-1/i+2 and i/i+2 spans are all under
// 6.5 the residue reads as helix, an i-1/i+2 span over 9.5 reads as
// strand, everything else is coil.
func AssignSecondaryStructure(coords []Point3) []byte {
	n := len(coords)
	sec := make([]byte, n+1)
	for i := range sec {
		sec[i] = 'C'
	}
	if n < 4 {
		return sec
	}

	for i := 1; i < n-2; i++ {
		d13 := dist(coords[i-1], coords[i+1])
		d14 := dist(coords[i-1], coords[i+2])
		d24 := dist(coords[i], coords[i+2])

		switch {
		case d13 < 6.5 && d14 < 6.5 && d24 < 6.5:
			sec[i] = 'H'
		case d14 > 9.5:
			sec[i] = 'E'
		default:
			sec[i] = 'C'
		}
	}
	sec[n] = 0
	return sec
}

func dist(a, b Point3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
