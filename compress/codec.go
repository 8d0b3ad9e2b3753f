package compress

import (
	"fmt"

	"github.com/enms-tools/enbfit/errs"
)

// Compressor compresses cached fit payloads.
//
// Memory management:
//   - Returned slice is owned by the caller, except for None which returns its input
//   - Input slice is not modified
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same Type.
//
// Decompress returns an error when data is corrupted or was produced by a
// different algorithm. Implementations are safe for concurrent use.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// Stats describes one compression of a payload.
type Stats struct {
	Algorithm      Type
	OriginalSize   int64
	CompressedSize int64
}

// Ratio returns compressed size / original size, or 0 for an empty payload.
// Values below 1 mean the payload shrank.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the saved space as a percentage.
func (s Stats) SpaceSavings() float64 {
	return (1 - s.Ratio()) * 100
}

var builtinCodecs = map[Type]Codec{
	None: NewNoOpCompressor(),
	Zstd: NewZstdCompressor(),
	S2:   NewS2Compressor(),
	LZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared built-in Codec for t.
func GetCodec(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnknownCompression, t)
}

// Seal compresses data with t and prefixes the result with the type byte, so
// Open can decode frames written with any algorithm.
func Seal(t Type, data []byte) ([]byte, Stats, error) {
	codec, err := GetCodec(t)
	if err != nil {
		return nil, Stats{}, err
	}

	body, err := codec.Compress(data)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%s compress: %w", t, err)
	}

	frame := make([]byte, 0, len(body)+1)
	frame = append(frame, byte(t))
	frame = append(frame, body...)

	return frame, Stats{Algorithm: t, OriginalSize: int64(len(data)), CompressedSize: int64(len(frame))}, nil
}

// Open decodes a frame produced by Seal.
func Open(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: empty frame", errs.ErrUnknownCompression)
	}

	t := Type(frame[0])
	codec, err := GetCodec(t)
	if err != nil {
		return nil, err
	}

	data, err := codec.Decompress(frame[1:])
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", t, err)
	}

	return data, nil
}
