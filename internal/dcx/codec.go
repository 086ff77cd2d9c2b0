package dcx

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/scigolib/paramdex/internal/utils"
)

// klauspostCodec backs Codec with klauspost/compress/zlib, a drop-in
// io.Reader-compatible zlib implementation used throughout this module in
// place of the standard library's compress/zlib.
type klauspostCodec struct{}

func (klauspostCodec) Inflate(r io.Reader, sizeHint int) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, utils.WrapError("zlib header", err)
	}
	defer zr.Close()

	var out bytes.Buffer
	if sizeHint > 0 {
		if sizeHint > utils.MaxDecompressedSize {
			return nil, utils.InvalidDataf("zlib inflate", "declared size %d exceeds maximum %d", sizeHint, utils.MaxDecompressedSize)
		}
		out.Grow(sizeHint)
	}

	if _, err := io.Copy(&out, io.LimitReader(zr, utils.MaxDecompressedSize+1)); err != nil {
		return nil, utils.WrapError("zlib inflate", err)
	}
	if out.Len() > utils.MaxDecompressedSize {
		return nil, utils.InvalidDataf("zlib inflate", "decompressed payload exceeds maximum %d bytes", utils.MaxDecompressedSize)
	}
	return out.Bytes(), nil
}

// defaultCodec is the Codec used by Decompress.
var defaultCodec Codec = klauspostCodec{}
