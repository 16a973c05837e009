package mvcc

import (
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// fingerprintWriteSet computes a BLAKE2b-256 digest over a transaction's
// applied write set in canonical (sorted key) order, so that two commits
// writing the same keys/values in a different internal map iteration
// order produce the same fingerprint. Grounded on the teacher's
// pkg/encryption use of golang.org/x/crypto for key/digest derivation,
// repurposed here for commit observability rather than at-rest encryption.
//
// Values are rendered with fmt.Sprintf("%v", ...): the store treats value
// as opaque (per §9 of SPEC_FULL.md, only equality and cheap copy are
// required), so this is the only representation available without asking
// callers to supply a serializer.
func fingerprintWriteSet(writes map[string]any) string {
	keys := make([]string, 0, len(writes))
	for k := range writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on a non-empty key argument; nil
		// never fails.
		panic(fmt.Sprintf("mvcc: blake2b.New256 failed unexpectedly: %v", err))
	}
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, writes[k])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
