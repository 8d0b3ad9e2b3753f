package compress

// ZstdCompressor gives the best ratio of the built-in codecs; preferred for
// shared caches such as Redis where payloads cross the network.
//
// The pure-Go klauspost implementation is used by default. Building with
// the gozstd tag and cgo enabled switches to the libzstd binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstd codec.
//
// Example:
//
//	codec := compress.NewZstdCompressor()
//	compressed, err := codec.Compress(payload)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
