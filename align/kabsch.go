// Package align implements the structural-alignment primitives the
// clustering engine treats as external collaborators: rigid-body
// superposition (Kabsch), the TM-score reduction, an affine-gap dynamic
// programming aligner, and the two documented entry points
// (TMAlignMain/HwRMSDMain) built from them.
package align

import (
	"math"

	"github.com/bioclust/tmclust/chain"
)

// Mat3 is a 3x3 rotation matrix, row-major.
type Mat3 [3][3]float64

// Apply rotates p by m (m*p); callers add the translation separately.
func (m Mat3) Apply(p chain.Point3) chain.Point3 {
	return chain.Point3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z,
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z,
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z,
	}
}

// Kabsch computes the optimal rotation and translation superposing p onto
// q (both of equal length, paired by index) and the resulting RMSD.
//
// This is the classical Kabsch algorithm: centre both point sets, form the
// 3x3 cross-covariance matrix H = Pᵗ Q, and take the rotation from H's
// polar decomposition. Go's ecosystem has no package in this retrieval
// pack offering a 3x3 SVD/polar decomposition, so the eigen-decomposition
// of HᵗH (a symmetric 3x3 matrix, solvable in closed form without a
// general-purpose linear-algebra dependency) stands in for a full SVD,
// which is mathematically equivalent for the 3x3 case this engine only
// ever needs.
func Kabsch(p, q []chain.Point3) (rot Mat3, trans chain.Point3, rmsd float64) {
	n := len(p)
	if n == 0 || len(q) != n {
		return identity(), chain.Point3{}, 0
	}

	cp := centroid(p)
	cq := centroid(q)

	var h [3][3]float64
	for i := 0; i < n; i++ {
		pi := sub(p[i], cp)
		qi := sub(q[i], cq)
		h[0][0] += pi.X * qi.X
		h[0][1] += pi.X * qi.Y
		h[0][2] += pi.X * qi.Z
		h[1][0] += pi.Y * qi.X
		h[1][1] += pi.Y * qi.Y
		h[1][2] += pi.Y * qi.Z
		h[2][0] += pi.Z * qi.X
		h[2][1] += pi.Z * qi.Y
		h[2][2] += pi.Z * qi.Z
	}

	rot = rotationFromCovariance(h)

	var sum float64
	for i := 0; i < n; i++ {
		pi := sub(p[i], cp)
		qi := sub(q[i], cq)
		rp := rot.Apply(pi)
		d := sub(rp, qi)
		sum += d.X*d.X + d.Y*d.Y + d.Z*d.Z
	}
	rmsd = math.Sqrt(sum / float64(n))

	// trans maps p's centroid onto q's centroid after rotation: q ≈ rot*(p-cp) + cq
	rcp := rot.Apply(cp)
	trans = sub(cq, rcp)
	return rot, trans, rmsd
}

// rotationFromCovariance extracts the optimal proper rotation from the
// cross-covariance matrix h via the eigen-decomposition of hᵗh, using the
// sign of det(h) to reject a reflection the way the standard Kabsch
// algorithm does.
func rotationFromCovariance(h [3][3]float64) Mat3 {
	ht := transpose(h)
	hth := matmul(ht, h)

	eigvals, eigvecs := jacobiEigen(hth)

	// sort eigenvalues descending so singular values line up largest-first
	order := []int{0, 1, 2}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if eigvals[order[j]] > eigvals[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	var v [3][3]float64 // columns = eigenvectors, largest eigenvalue first
	for col, o := range order {
		for row := 0; row < 3; row++ {
			v[row][col] = eigvecs[row][o]
		}
	}

	singular := [3]float64{}
	for i, o := range order {
		sv := math.Sqrt(math.Max(eigvals[o], 0))
		singular[i] = sv
	}

	var u [3][3]float64
	for col := 0; col < 3; col++ {
		if singular[col] < 1e-12 {
			u[0][col], u[1][col], u[2][col] = 0, 0, 0
			continue
		}
		hv := mulVec(h, column(v, col))
		inv := 1 / singular[col]
		u[0][col] = hv[0] * inv
		u[1][col] = hv[1] * inv
		u[2][col] = hv[2] * inv
	}

	// a planar point set leaves the smallest singular value at zero;
	// complete U's third column as u0 x u1 so U stays orthonormal
	if singular[2] < 1e-12 && singular[1] >= 1e-12 {
		u[0][2] = u[1][0]*u[2][1] - u[2][0]*u[1][1]
		u[1][2] = u[2][0]*u[0][1] - u[0][0]*u[2][1]
		u[2][2] = u[0][0]*u[1][1] - u[1][0]*u[0][1]
	}

	if det3(u)*det3(v) < 0 {
		u[0][2] *= -1
		u[1][2] *= -1
		u[2][2] *= -1
	}

	// rot = U * Vᵗ
	vt := transposeArr(v)
	rotArr := matmul(u, vt)
	return Mat3(rotArr)
}

func identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func centroid(pts []chain.Point3) chain.Point3 {
	var c chain.Point3
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	n := float64(len(pts))
	c.X /= n
	c.Y /= n
	c.Z /= n
	return c
}

func sub(a, b chain.Point3) chain.Point3 {
	return chain.Point3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func transpose(m [3][3]float64) [3][3]float64 {
	var t [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

func transposeArr(m [3][3]float64) [3][3]float64 { return transpose(m) }

func matmul(a, b [3][3]float64) [3][3]float64 {
	var c [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += a[i][k] * b[k][j]
			}
			c[i][j] = s
		}
	}
	return c
}

func mulVec(m [3][3]float64, v [3]float64) [3]float64 {
	var r [3]float64
	for i := 0; i < 3; i++ {
		r[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return r
}

func column(m [3][3]float64, c int) [3]float64 {
	return [3]float64{m[0][c], m[1][c], m[2][c]}
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// jacobiEigen diagonalises a symmetric 3x3 matrix via the classical cyclic
// Jacobi rotation method, returning eigenvalues and the matching
// eigenvectors as columns of a 3x3 matrix. Convergence is fast (well under
// 50 sweeps) for 3x3 inputs, and exact diagonalization is unnecessary here
// since the result only orders and signs singular directions.
func jacobiEigen(a [3][3]float64) (vals [3]float64, vecs [3][3]float64) {
	vecs = identity3()
	for sweep := 0; sweep < 100; sweep++ {
		off := math.Abs(a[0][1]) + math.Abs(a[0][2]) + math.Abs(a[1][2])
		if off < 1e-14 {
			break
		}
		for _, pq := range [][2]int{{0, 1}, {0, 2}, {1, 2}} {
			p, q := pq[0], pq[1]
			if math.Abs(a[p][q]) < 1e-300 {
				continue
			}
			theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
			t := sign(theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
			c := 1 / math.Sqrt(t*t+1)
			s := t * c

			app, aqq, apq := a[p][p], a[q][q], a[p][q]
			a[p][p] = c*c*app - 2*s*c*apq + s*s*aqq
			a[q][q] = s*s*app + 2*s*c*apq + c*c*aqq
			a[p][q] = 0
			a[q][p] = 0
			for i := 0; i < 3; i++ {
				if i != p && i != q {
					aip, aiq := a[i][p], a[i][q]
					a[i][p] = c*aip - s*aiq
					a[p][i] = a[i][p]
					a[i][q] = s*aip + c*aiq
					a[q][i] = a[i][q]
				}
			}
			for i := 0; i < 3; i++ {
				vip, viq := vecs[i][p], vecs[i][q]
				vecs[i][p] = c*vip - s*viq
				vecs[i][q] = s*vip + c*viq
			}
		}
	}
	vals = [3]float64{a[0][0], a[1][1], a[2][2]}
	return vals, vecs
}

func identity3() [3][3]float64 {
	return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
