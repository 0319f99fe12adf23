// Package ply reads and writes Gaussian splats stored as PLY point clouds.
//
// Writing always produces the 64-property Inria schema (see Properties) in
// the host's binary byte order. Reading sniffs the header: files that match
// that exact schema and byte order are decoded by copying each 256-byte
// record straight into a Pod, everything else goes through a slower path that
// assigns properties by name from ASCII, binary little endian or binary big
// endian bodies.
//
//	pods, err := ply.ReadFile("scene.ply", ply.WithLogger(logger))
//	for g := range pods.All() {
//		...
//	}
//
// For large files, ReadHeader and Records decode one record at a time.
package ply
