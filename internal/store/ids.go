package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

const nodeIDPrefix = "node"

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// idTaken reports whether id belongs to a live node or to one that was deleted.
// Deleted ids are retired forever so stale references can never resolve to a new node.
func (db *DB) idTaken(id string) bool {
	if _, ok := db.nodes[id]; ok {
		return true
	}
	return db.retired[id]
}

func (db *DB) nextID() string {
	gen := db.newID
	if gen == nil {
		gen = func() (string, error) { return newRandomID(nodeIDPrefix) }
	}
	for i := 0; i < 64; i++ {
		id, err := gen()
		if err != nil {
			break
		}
		id = strings.TrimSpace(id)
		if id != "" && !db.idTaken(id) {
			return id
		}
	}
	// Fallback keeps ids unique even if the generator is exhausted or broken.
	for {
		db.seq++
		id := fmt.Sprintf("%s-%d", nodeIDPrefix, db.seq)
		if !db.idTaken(id) {
			return id
		}
	}
}
