// Package compress provides the codecs used for cached fit payloads.
//
// Four algorithms are available: None, Zstd, S2 and LZ4. Seal writes a frame
// whose first byte is the Type, followed by the compressed body; Open reads
// any such frame regardless of the codec the cache is currently configured
// with, so changing the compression setting never invalidates stored entries.
//
//	frame, stats, err := compress.Seal(compress.Zstd, payload)
//	...
//	payload, err = compress.Open(frame)
//
// # Choosing a codec
//
//   - Zstd: best ratio, suited to Redis and other shared stores
//   - S2: fastest, suited to in-process caches
//   - LZ4: fast with a fixed-size length header
//   - None: tiny payloads or debugging
//
// Zstd uses github.com/klauspost/compress/zstd unless the module is built with
// `-tags gozstd` and cgo enabled, in which case github.com/valyala/gozstd is
// used. Both produce standard Zstandard frames and can read each other's output.
package compress
