// Package endian provides byte order utilities for the binary splat codecs.
//
// PLY bodies may be written in either byte order and the fast PLY read path is
// only taken when the body matches the host's byte order, so this package also
// detects the native order. SPZ is always little endian.
//
//	engine := endian.GetNativeEngine()
//	v := engine.Uint32(buf)
//	buf = engine.AppendUint32(buf, v)
//
// All functions are safe for concurrent use. Returned engines are stateless.
package endian

import (
	"encoding/binary"
	"unsafe"

	"github.com/arloliu/gsplat/format"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100: a little-endian host stores the 0x00 byte first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	if IsNativeBigEndian() {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// NativePlyEncoding returns the binary PLY encoding matching the host byte order.
func NativePlyEncoding() format.PlyEncoding {
	if IsNativeBigEndian() {
		return format.PlyBinaryBigEndian
	}

	return format.PlyBinaryLittleEndian
}

// GetPlyEngine returns the engine for a binary PLY encoding.
//
// Returns:
//   - EndianEngine: engine for the encoding
//   - bool: false if the encoding is not binary
func GetPlyEngine(enc format.PlyEncoding) (EndianEngine, bool) {
	switch enc {
	case format.PlyBinaryLittleEndian:
		return binary.LittleEndian, true
	case format.PlyBinaryBigEndian:
		return binary.BigEndian, true
	default:
		return nil, false
	}
}
