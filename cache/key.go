package cache

import (
	"strconv"

	"github.com/enms-tools/enbfit/internal/hash"
	"github.com/enms-tools/enbfit/regression"
)

// keyNamespace prefixes every key written by this package.
const keyNamespace = "enbfit"

// KeyPrefix returns the prefix shared by all keys of a baseline:
// "enbfit:<len(id)>:<id>:". The length keeps the prefix of one id from
// matching the keys of another id that starts with it.
func KeyPrefix(baselineID string) string {
	return keyNamespace + ":" + strconv.Itoa(len(baselineID)) + ":" + baselineID + ":"
}

// Key returns the cache key of one analysis: "enbfit:<len(id)>:<id>:<hex>".
//
// The hex part hashes the baseline fingerprint, the driver selection and
// variant, a tag for settings that change the result (fit options, chart
// samples). Editing any data point changes the fingerprint, so stale
// entries are never read back; they expire or are removed by Invalidate.
func Key(baselineID string, fingerprint uint64, sel regression.Selection, variant string) string {
	d := hash.NewDigest().Uint64(fingerprint).Int(int(sel.Chart)).Int(len(sel.Linear))
	for _, s := range sel.Linear {
		d.Int(int(s))
	}
	d.String(variant)

	return KeyPrefix(baselineID) + strconv.FormatUint(d.Sum64(), 16)
}
