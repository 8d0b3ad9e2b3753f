package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// maxLZ4Size bounds the decoded size announced by a frame header.
const maxLZ4Size = 128 * 1024 * 1024

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor uses the LZ4 block format. Blocks do not record their decoded
// size, so Compress prepends a uvarint header of size<<1|raw and Decompress
// allocates exactly. raw is set when the input did not compress and is stored
// verbatim.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data as <uvarint header><lz4 block or raw bytes>.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	size := uint64(len(data)) << 1
	dst := make([]byte, binary.MaxVarintLen64+lz4.CompressBlockBound(len(data)))
	hdr := binary.PutUvarint(dst, size)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[hdr:])
	if err != nil {
		return nil, err
	}

	if n == 0 {
		hdr = binary.PutUvarint(dst, size|1)
		n = copy(dst[hdr:], data)
	}

	return dst[:hdr+n], nil
}

// Decompress decodes data produced by Compress.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	header, hdr := binary.Uvarint(data)
	if hdr <= 0 {
		return nil, errors.New("lz4: invalid length header")
	}

	size := header >> 1
	if size > maxLZ4Size {
		return nil, fmt.Errorf("lz4: decoded size %d exceeds limit %d", size, maxLZ4Size)
	}

	if header&1 == 1 {
		if uint64(len(data)-hdr) != size {
			return nil, fmt.Errorf("lz4: raw block of %d bytes, header says %d", len(data)-hdr, size)
		}

		return append([]byte(nil), data[hdr:]...), nil
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data[hdr:], buf)
	if err != nil {
		return nil, err
	}
	if uint64(n) != size {
		return nil, fmt.Errorf("lz4: decoded %d bytes, header says %d", n, size)
	}

	return buf, nil
}
