package projection

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"
)

// Digest is a stable content hash of a view subtree. Renderers key their caches on it; equal
// views always hash equally because json.Marshal emits struct fields in declaration order.
func Digest(v View) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
