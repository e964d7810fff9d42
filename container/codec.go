package container

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/mrjoshuak/go-jpeg2000"

	psdrun "github.com/signal-slot/psd-run"
)

type zlibWriterPoolItem struct {
	writer *zlib.Writer
	buf    *bytes.Buffer
}

var zlibWriterPool = sync.Pool{
	New: func() any {
		buf := new(bytes.Buffer)
		w, _ := zlib.NewWriterLevel(buf, zlib.DefaultCompression)
		return &zlibWriterPoolItem{writer: w, buf: buf}
	},
}

// zipCompress deflates src with a zlib wrapper. level is a zlib level;
// zlib.DefaultCompression uses a pooled writer.
func zipCompress(src []byte, level int) ([]byte, error) {
	if level == zlib.DefaultCompression {
		item := zlibWriterPool.Get().(*zlibWriterPoolItem)
		defer zlibWriterPool.Put(item)
		item.buf.Reset()
		item.writer.Reset(item.buf)

		if _, err := item.writer.Write(src); err != nil {
			item.writer.Close()
			return nil, err
		}
		if err := item.writer.Close(); err != nil {
			return nil, err
		}
		return bytes.Clone(item.buf.Bytes()), nil
	}

	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// zipDecompress inflates src, which must expand to exactly size bytes.
// size < 0 accepts any length up to limit.
func zipDecompress(src []byte, size int, limit int64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer r.Close()

	if size >= 0 {
		limit = int64(size)
	}
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if int64(len(out)) > limit || (size >= 0 && len(out) != size) {
		return nil, fmt.Errorf("%w: inflated to %d bytes", ErrCorrupt, len(out))
	}
	return out, nil
}

// j2kEncode stores tightly packed RGB samples as a lossless codestream.
func j2kEncode(rgb []byte, width, height int) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(rgb); i, j = i+3, j+4 {
		img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = rgb[i], rgb[i+1], rgb[i+2], 255
	}

	var buf bytes.Buffer
	opts := &jpeg2000.Options{
		Format:   jpeg2000.FormatJ2K,
		Lossless: true,
	}
	if err := jpeg2000.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("container: jpeg2000 encode: %w", err)
	}
	return buf.Bytes(), nil
}

// j2kDecode returns tightly packed RGB samples from a codestream.
func j2kDecode(src []byte, width, height int) ([]byte, error) {
	img, err := jpeg2000.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: jpeg2000: %v", ErrCorrupt, err)
	}
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, fmt.Errorf("%w: jpeg2000 image is %dx%d, want %dx%d", ErrCorrupt, b.Dx(), b.Dy(), width, height)
	}

	out := make([]byte, 0, width*height*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out, nil
}

// encodeBlock compresses one channel buffer and returns the codec used.
func encodeBlock(codec Codec, data []byte, width, height, channels, level int) ([]byte, Codec, error) {
	if codec == CodecJ2K && channels != 3 {
		codec = CodecZip
	}
	switch codec {
	case CodecRaw:
		return data, CodecRaw, nil
	case CodecZip, "":
		out, err := zipCompress(data, level)
		return out, CodecZip, err
	case CodecJ2K:
		if out, ok := j2kLossless(data, width, height); ok {
			return out, CodecJ2K, nil
		}
		out, err := zipCompress(data, level)
		return out, CodecZip, err
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownCodec, codec)
	}
}

// j2kLossless encodes data as a codestream and reports whether decoding
// it restores every sample.
func j2kLossless(data []byte, width, height int) ([]byte, bool) {
	out, err := j2kEncode(data, width, height)
	if err != nil {
		psdrun.Logger().Debug("j2k encode failed, storing as zip", "err", err)
		return nil, false
	}
	back, err := j2kDecode(out, width, height)
	if err != nil || !bytes.Equal(back, data) {
		psdrun.Logger().Debug("j2k block not lossless, storing as zip",
			"width", width, "height", height)
		return nil, false
	}
	return out, true
}

// decodeBlock expands a stored block described by ref.
func decodeBlock(ref *blockRef, stored []byte) ([]byte, error) {
	size := ref.Width * ref.Height * ref.Channels
	switch ref.Codec {
	case CodecRaw:
		if len(stored) != size {
			return nil, fmt.Errorf("%w: raw block has %d bytes, want %d", ErrCorrupt, len(stored), size)
		}
		return stored, nil
	case CodecZip:
		return zipDecompress(stored, size, 0)
	case CodecJ2K:
		if ref.Channels != 3 {
			return nil, fmt.Errorf("%w: j2k block with %d channels", ErrCorrupt, ref.Channels)
		}
		return j2kDecode(stored, ref.Width, ref.Height)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, ref.Codec)
	}
}
