package ply

import (
	"image/color"
	"unsafe"

	"github.com/arloliu/gsplat/gaussian"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// NumProperties is the number of float properties in the Inria schema.
	NumProperties = 64
	// PodSize is the size in bytes of one binary Inria record.
	PodSize = NumProperties * 4
)

// Properties lists the Inria vertex schema in file order. This list and its
// order are a compatibility contract with external PLY tools.
var Properties = [NumProperties]string{
	"x", "y", "z",
	"nx", "ny", "nz",
	"f_dc_0", "f_dc_1", "f_dc_2",
	"f_rest_0", "f_rest_1", "f_rest_2", "f_rest_3", "f_rest_4",
	"f_rest_5", "f_rest_6", "f_rest_7", "f_rest_8", "f_rest_9",
	"f_rest_10", "f_rest_11", "f_rest_12", "f_rest_13", "f_rest_14",
	"f_rest_15", "f_rest_16", "f_rest_17", "f_rest_18", "f_rest_19",
	"f_rest_20", "f_rest_21", "f_rest_22", "f_rest_23", "f_rest_24",
	"f_rest_25", "f_rest_26", "f_rest_27", "f_rest_28", "f_rest_29",
	"f_rest_30", "f_rest_31", "f_rest_32", "f_rest_33", "f_rest_34",
	"f_rest_35", "f_rest_36", "f_rest_37", "f_rest_38", "f_rest_39",
	"f_rest_40", "f_rest_41", "f_rest_42", "f_rest_43", "f_rest_44",
	"opacity",
	"scale_0", "scale_1", "scale_2",
	"rot_0", "rot_1", "rot_2", "rot_3",
}

var propertyIndex = func() map[string]int {
	m := make(map[string]int, NumProperties)
	for i, name := range Properties {
		m[name] = i
	}

	return m
}()

// PropertyIndex returns the position of name in the Inria schema.
func PropertyIndex(name string) (int, bool) {
	i, ok := propertyIndex[name]
	return i, ok
}

// Pod is one Inria PLY vertex record.
//
// Fields are plain float32 arrays so the struct has no padding and its memory
// layout is exactly the 64 properties in schema order.
type Pod struct {
	Pos    [3]float32
	Normal [3]float32
	Color  [3]float32
	Sh     [3 * gaussian.NumShCoefficients]float32
	Alpha  float32
	Scale  [3]float32
	Rot    [4]float32 // w, x, y, z
}

var _ [PodSize]byte = [unsafe.Sizeof(Pod{})]byte{}

// values views the record as its 64 properties in schema order.
func (p *Pod) values() *[NumProperties]float32 {
	return (*[NumProperties]float32)(unsafe.Pointer(p))
}

// bytes views the record as its native-endian binary form.
func (p *Pod) bytes() *[PodSize]byte {
	return (*[PodSize]byte)(unsafe.Pointer(p))
}

// Values returns the 64 properties in schema order.
func (p Pod) Values() [NumProperties]float32 {
	return *p.values()
}

// SetValue assigns a property by name. It reports false for names outside
// the schema, leaving the record unchanged.
func (p *Pod) SetValue(name string, value float32) bool {
	i, ok := propertyIndex[name]
	if !ok {
		return false
	}
	p.values()[i] = value

	return true
}

// Value returns a property by name.
func (p *Pod) Value(name string) (float32, bool) {
	i, ok := propertyIndex[name]
	if !ok {
		return 0, false
	}

	return p.values()[i], true
}

// opacity bounds keep the stored logit finite while still rounding back to 0 and 255.
const (
	minOpacity = 0.25 / 255
	maxOpacity = 254.75 / 255
)

// FromGaussian converts a canonical record to its PLY form.
func FromGaussian(g gaussian.Gaussian) Pod {
	var p Pod

	p.Pos = g.Pos
	p.Normal = [3]float32{0, 0, 1}
	p.Rot = [4]float32{g.Rot.W, g.Rot.V[0], g.Rot.V[1], g.Rot.V[2]}

	for i := range 3 {
		p.Scale[i] = math32.Log(g.Scale[i])
	}

	rgb := [3]uint8{g.Color.R, g.Color.G, g.Color.B}
	for i, c := range rgb {
		p.Color[i] = (float32(c)/255 - 0.5) / gaussian.ShC0
	}

	a := float32(g.Color.A) / 255
	p.Alpha = gaussian.Logit(min(max(a, minOpacity), maxOpacity))

	for i := range gaussian.NumShCoefficients {
		p.Sh[i] = g.Sh[i][0]
		p.Sh[i+gaussian.NumShCoefficients] = g.Sh[i][1]
		p.Sh[i+2*gaussian.NumShCoefficients] = g.Sh[i][2]
	}

	return p
}

// Gaussian converts the record to its canonical form.
func (p Pod) Gaussian() gaussian.Gaussian {
	var g gaussian.Gaussian

	g.Pos = p.Pos
	g.Rot = gaussian.NormalizeQuat(gaussian.Quat(p.Rot[1], p.Rot[2], p.Rot[3], p.Rot[0]))
	g.Scale = mgl32.Vec3{math32.Exp(p.Scale[0]), math32.Exp(p.Scale[1]), math32.Exp(p.Scale[2])}

	g.Color = color.NRGBA{
		R: gaussian.ClampUnit8((p.Color[0]*gaussian.ShC0 + 0.5) * 255),
		G: gaussian.ClampUnit8((p.Color[1]*gaussian.ShC0 + 0.5) * 255),
		B: gaussian.ClampUnit8((p.Color[2]*gaussian.ShC0 + 0.5) * 255),
		A: gaussian.ClampUnit8(gaussian.Sigmoid(p.Alpha) * 255),
	}

	for i := range gaussian.NumShCoefficients {
		g.Sh[i] = mgl32.Vec3{
			p.Sh[i],
			p.Sh[i+gaussian.NumShCoefficients],
			p.Sh[i+2*gaussian.NumShCoefficients],
		}
	}

	return g
}
