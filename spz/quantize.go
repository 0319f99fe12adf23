package spz

import (
	"encoding/binary"
	"image/color"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/x448/float16"

	"github.com/arloliu/gsplat/gaussian"
)

const (
	scaleOffset = 10
	scaleFactor = 16

	smallestThreeMask = 511
	smallestThreeMax  = 510
)

// quantizer converts between canonical and quantized records for one header.
type quantizer struct {
	header     Header
	shBits     [3]uint8
	colorScale float32
}

func (q quantizer) pack(g gaussian.Gaussian) Gaussian {
	return Gaussian{
		Position: q.packPosition(g.Pos),
		Scale:    packScale(g.Scale),
		Rotation: q.packRotation(g.Rot),
		Alpha:    g.Color.A,
		Color:    packColor(g.Color, q.colorScale),
		Sh:       q.packSh(&g.Sh),
	}
}

func (q quantizer) packPosition(pos mgl32.Vec3) Position {
	if q.header.UsesFloat16() {
		var p PositionFloat16
		for i := range 3 {
			p[i] = float16.Fromfloat32(pos[i]).Bits()
		}

		return p
	}

	var p PositionFixedPoint24
	scale := fixedPointScale(int(q.header.FractionalBits()))
	for i := range 3 {
		v := math32.Round(pos[i] * scale)
		v = min(max(v, -(1<<23)), 1<<23-1)
		fixed := uint32(int32(v))
		p[i] = [3]byte{byte(fixed), byte(fixed >> 8), byte(fixed >> 16)}
	}

	return p
}

// fixedPointScale returns 2^exp. Headers may carry any fractional bit count,
// so the shift is done in floating point.
func fixedPointScale(exp int) float32 {
	return float32(math.Ldexp(1, exp))
}

func unpackPosition(p Position, fractionalBits uint8) mgl32.Vec3 {
	var pos mgl32.Vec3

	switch p := p.(type) {
	case PositionFloat16:
		for i := range 3 {
			pos[i] = float16.Frombits(p[i]).Float32()
		}
	case PositionFixedPoint24:
		scale := fixedPointScale(-int(fractionalBits))
		for i := range 3 {
			fixed := int32(uint32(p[i][0]) | uint32(p[i][1])<<8 | uint32(p[i][2])<<16)
			if fixed&0x800000 != 0 {
				fixed |= ^0xffffff
			}
			pos[i] = float32(fixed) * scale
		}
	}

	return pos
}

func packScale(s mgl32.Vec3) [3]uint8 {
	var out [3]uint8
	for i := range 3 {
		out[i] = gaussian.ClampUnit8((math32.Log(s[i]) + scaleOffset) * scaleFactor)
	}

	return out
}

func unpackScale(s [3]uint8) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := range 3 {
		out[i] = math32.Exp(float32(s[i])/scaleFactor - scaleOffset)
	}

	return out
}

func (q quantizer) packRotation(rot mgl32.Quat) Rotation {
	xyzw := gaussian.QuatXYZW(gaussian.NormalizeQuat(rot))

	if q.header.UsesQuatSmallestThree() {
		return packSmallestThree(xyzw)
	}

	return packFirstThree(xyzw)
}

func packFirstThree(xyzw [4]float32) RotationFirstThree {
	sign := float32(1)
	if xyzw[3] < 0 {
		sign = -1
	}

	var r RotationFirstThree
	for i := range 3 {
		r[i] = gaussian.ClampUnit8(xyzw[i]*sign*127.5 + 127.5)
	}

	return r
}

func unpackFirstThree(r RotationFirstThree) mgl32.Quat {
	x := float32(r[0])/127.5 - 1
	y := float32(r[1])/127.5 - 1
	z := float32(r[2])/127.5 - 1
	w := math32.Sqrt(max(0, 1-(x*x+y*y+z*z)))

	return gaussian.Quat(x, y, z, w)
}

func packSmallestThree(xyzw [4]float32) RotationSmallestThree {
	largest := 0
	for i := 1; i < 4; i++ {
		if math32.Abs(xyzw[i]) > math32.Abs(xyzw[largest]) {
			largest = i
		}
	}
	negate := xyzw[largest] < 0

	comp := uint32(largest)
	for i := range 4 {
		if i == largest {
			continue
		}

		var negBit uint32
		if (xyzw[i] < 0) != negate {
			negBit = 1
		}
		mag := math32.Round(smallestThreeMask * math32.Abs(xyzw[i]) * math.Sqrt2)
		mag = min(max(mag, 0), smallestThreeMax)
		comp = comp<<10 | negBit<<9 | uint32(mag)
	}

	var r RotationSmallestThree
	binary.LittleEndian.PutUint32(r[:], comp)

	return r
}

func unpackSmallestThree(r RotationSmallestThree) mgl32.Quat {
	comp := binary.LittleEndian.Uint32(r[:])
	largest := int(comp >> 30)

	var xyzw [4]float32
	var sumSquares float32
	for i := 3; i >= 0; i-- {
		if i == largest {
			continue
		}

		mag := comp & smallestThreeMask
		negBit := comp >> 9 & 1
		comp >>= 10

		v := float32(mag) / (smallestThreeMask * math.Sqrt2)
		if negBit == 1 {
			v = -v
		}
		xyzw[i] = v
		sumSquares += v * v
	}
	xyzw[largest] = math32.Sqrt(max(0, 1-sumSquares))

	return gaussian.Quat(xyzw[0], xyzw[1], xyzw[2], xyzw[3])
}

func unpackRotation(r Rotation) mgl32.Quat {
	switch r := r.(type) {
	case RotationFirstThree:
		return unpackFirstThree(r)
	case RotationSmallestThree:
		return unpackSmallestThree(r)
	default:
		return mgl32.QuatIdent()
	}
}

// colorRatio is K0 divided by the DC color scale.
func colorRatio(colorScale float32) float32 {
	return gaussian.ShC0 / colorScale
}

func packColor(c color.NRGBA, colorScale float32) [3]uint8 {
	r := colorRatio(colorScale)
	offset := (1 - r) * 127.5

	return [3]uint8{
		gaussian.ClampUnit8((float32(c.R) - offset) / r),
		gaussian.ClampUnit8((float32(c.G) - offset) / r),
		gaussian.ClampUnit8((float32(c.B) - offset) / r),
	}
}

func unpackColor(c [3]uint8, alpha uint8, colorScale float32) color.NRGBA {
	r := colorRatio(colorScale)
	offset := (1 - r) * 127.5

	return color.NRGBA{
		R: gaussian.ClampUnit8(float32(c[0])*r + offset),
		G: gaussian.ClampUnit8(float32(c[1])*r + offset),
		B: gaussian.ClampUnit8(float32(c[2])*r + offset),
		A: alpha,
	}
}

// shDegreeOf returns the SH degree a coefficient index belongs to.
func shDegreeOf(coefficient int) int {
	switch {
	case coefficient < 3:
		return 1
	case coefficient < 8:
		return 2
	default:
		return 3
	}
}

func quantizeSh(x float32, bits uint8) uint8 {
	bucket := int32(1) << (8 - bits)
	q := int32(math32.Round(x*128 + 128))
	q = (q + bucket/2) / bucket * bucket

	return uint8(min(max(q, 0), 255))
}

func unquantizeSh(q uint8) float32 {
	return (float32(q) - 128) / 128
}

func (q quantizer) packSh(sh *[gaussian.NumShCoefficients]mgl32.Vec3) Sh {
	switch q.header.ShDegree() {
	case 1:
		var out ShOne
		q.quantizeCoefficients(sh, out[:])
		return out
	case 2:
		var out ShTwo
		q.quantizeCoefficients(sh, out[:])
		return out
	case 3:
		var out ShThree
		q.quantizeCoefficients(sh, out[:])
		return out
	default:
		return ShZero{}
	}
}

func (q quantizer) quantizeCoefficients(sh *[gaussian.NumShCoefficients]mgl32.Vec3, out [][3]uint8) {
	for i := range out {
		bits := q.shBits[shDegreeOf(i)-1]
		for c := range 3 {
			out[i][c] = quantizeSh(sh[i][c], bits)
		}
	}
}

func unpackSh(sh Sh) [gaussian.NumShCoefficients]mgl32.Vec3 {
	var coefficients [][3]uint8
	switch sh := sh.(type) {
	case ShOne:
		coefficients = sh[:]
	case ShTwo:
		coefficients = sh[:]
	case ShThree:
		coefficients = sh[:]
	}

	var out [gaussian.NumShCoefficients]mgl32.Vec3
	for i, coeff := range coefficients {
		out[i] = mgl32.Vec3{unquantizeSh(coeff[0]), unquantizeSh(coeff[1]), unquantizeSh(coeff[2])}
	}

	return out
}

func (q quantizer) unpack(g Gaussian) gaussian.Gaussian {
	return gaussian.Gaussian{
		Rot:   unpackRotation(g.Rotation),
		Pos:   unpackPosition(g.Position, q.header.FractionalBits()),
		Color: unpackColor(g.Color, g.Alpha, q.colorScale),
		Sh:    unpackSh(g.Sh),
		Scale: unpackScale(g.Scale),
	}
}

// ToGaussian converts the point to its canonical form using the default
// color scale. The header supplies the fixed-point precision.
func (g Gaussian) ToGaussian(h Header) gaussian.Gaussian {
	return quantizer{header: h, colorScale: DefaultColorScale}.unpack(g)
}
