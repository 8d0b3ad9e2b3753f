package compress

import (
	"fmt"
	"strings"

	"github.com/enms-tools/enbfit/errs"
)

// Type identifies a compression algorithm. The value is stored as the first
// byte of every frame produced by Seal, so existing values must not change.
type Type uint8

const (
	None Type = 0x1 // None stores payloads as-is.
	Zstd Type = 0x2 // Zstd is Zstandard.
	S2   Type = 0x3 // S2 is the Snappy-compatible S2 format.
	LZ4  Type = 0x4 // LZ4 is the LZ4 block format with a length prefix.
)

var typeNames = map[Type]string{
	None: "none",
	Zstd: "zstd",
	S2:   "s2",
	LZ4:  "lz4",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("unknown(0x%02x)", uint8(t))
}

// ParseType parses a compression name such as "zstd". The empty string is None.
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return None, nil
	}

	for t, tn := range typeNames {
		if tn == n {
			return t, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errs.ErrUnknownCompression, name)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("%w: 0x%02x", errs.ErrUnknownCompression, uint8(t))
	}

	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed

	return nil
}
