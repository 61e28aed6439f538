package termhost

import "math"

// affine is a 2D affine matrix laid out as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type affine [6]float64

var identity = affine{1, 0, 0, 1, 0, 0}

// mul returns p·c: c is applied first.
func mul(p, c affine) affine {
	return affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

func (m affine) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// scale returns the mean axis scale, used for stroke widths.
func (m affine) scale() float64 {
	return (math.Hypot(m[0], m[1]) + math.Hypot(m[2], m[3])) / 2
}

func translation(x, y float64) affine { return affine{1, 0, 0, 1, x, y} }

func scaling(sx, sy float64) affine { return affine{sx, 0, 0, sy, 0, 0} }

func rotation(theta float64) affine {
	sin, cos := math.Sincos(theta)
	return affine{cos, sin, -sin, cos, 0, 0}
}
