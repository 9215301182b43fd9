package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// GenerateKey hashes the identifying parts of a delivery (callback-query id,
// chat+message id, transaction signature) into a fixed-width key. Parts are
// separated so that ("ab","c") and ("a","bc") never collide.
func GenerateKey(parts ...any) string {
	h := sha256.New()
	for i, part := range parts {
		if i > 0 {
			io.WriteString(h, "|")
		}
		fmt.Fprint(h, part)
	}

	return hex.EncodeToString(h.Sum(nil))
}
