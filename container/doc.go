// Package container reads and writes LYRD, a compact layered-document
// format holding everything psdrun renders: the layer tree, geometry,
// blend state, text runs, authoring hints and per-layer pixel and mask
// channels.
//
// A file is an 8-byte header ("LYRD", version, flags), a zlib-compressed
// JSON manifest prefixed by its length, and a block area. Each pixel or
// mask buffer referenced by the manifest is stored in the block area with
// one of three codecs: raw, zip (zlib) or j2k (lossless JPEG 2000, for
// 3-channel color only).
//
// Decoder implements psdrun.Decoder:
//
//	rt := psdrun.New(container.Decoder{})
//	res, err := rt.LoadBytes(data)
package container
