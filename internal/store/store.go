package store

import (
	"fmt"
	"sort"
	"strings"

	"quire/internal/model"

	"github.com/rs/zerolog"
)

// DB is the in-memory node store. It owns every node and is the only place node fields
// are written. Reads hand out deep copies.
//
// DB is not safe for concurrent use; callers serialize access (the TUI and shell do all
// work on a single goroutine).
type DB struct {
	nodes   map[string]*model.Node
	retired map[string]bool

	// created records insertion sequence so Nodes() has a stable order.
	created map[string]uint64
	clock   uint64
	seq     int

	newID func() (string, error)
	log   zerolog.Logger
}

type Option func(*DB)

// WithLogger makes the store log every applied mutation at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(db *DB) { db.log = l }
}

// WithIDFunc overrides id generation. Tests use it for readable, deterministic ids.
func WithIDFunc(f func() (string, error)) Option {
	return func(db *DB) { db.newID = f }
}

func New(opts ...Option) *DB {
	db := &DB{
		nodes:   map[string]*model.Node{},
		retired: map[string]bool{},
		created: map[string]uint64{},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(db)
	}
	return db
}

// FromNodes builds a store from literal nodes (fixtures, imports). Nodes keep their ids and
// orders; the result must satisfy every store invariant or an error is returned.
func FromNodes(nodes []model.Node, opts ...Option) (*DB, error) {
	db := New(opts...)
	for _, n := range nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" {
			return nil, NotFoundError{Kind: "node id", ID: "(empty)"}
		}
		if _, dup := db.nodes[id]; dup {
			return nil, fmt.Errorf("duplicate node id: %s", id)
		}
		if _, ok := model.ParseNodeType(string(n.Type)); !ok {
			return nil, fmt.Errorf("%w: %q (node %s)", ErrInvalidNodeType, n.Type, id)
		}
		c := n.Clone()
		c.ID = id
		if c.Content == nil {
			c.Content = model.DefaultContent(c.Type)
		}
		if c.Type.IsContainer() && c.Style == nil {
			s := model.DefaultHeadingStyle()
			c.Style = &s
		}
		db.insert(&c)
	}
	if err := db.Check(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) insert(n *model.Node) {
	db.clock++
	db.nodes[n.ID] = n
	db.created[n.ID] = db.clock
}

func (db *DB) Len() int { return len(db.nodes) }

// FindNode returns a copy of the node with id.
func (db *DB) FindNode(id string) (model.Node, bool) {
	n, ok := db.nodes[strings.TrimSpace(id)]
	if !ok {
		return model.Node{}, false
	}
	return n.Clone(), true
}

func (db *DB) Has(id string) bool {
	_, ok := db.nodes[strings.TrimSpace(id)]
	return ok
}

// Nodes returns copies of all nodes in creation order.
func (db *DB) Nodes() []model.Node {
	ids := make([]string, 0, len(db.nodes))
	for id := range db.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return db.created[ids[i]] < db.created[ids[j]] })
	out := make([]model.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, db.nodes[id].Clone())
	}
	return out
}

// Children returns every node whose parent is parentID ("" for roots), sorted ascending by
// order. It never mutates the store.
func (db *DB) Children(parentID string) []model.Node {
	sibs := db.siblings(strings.TrimSpace(parentID))
	out := make([]model.Node, 0, len(sibs))
	for _, n := range sibs {
		out = append(out, n.Clone())
	}
	return out
}

func (db *DB) Roots() []model.Node { return db.Children("") }

// ChildIDs is Children without the copies, for traversal-heavy callers.
func (db *DB) ChildIDs(parentID string) []string {
	sibs := db.siblings(strings.TrimSpace(parentID))
	out := make([]string, 0, len(sibs))
	for _, n := range sibs {
		out = append(out, n.ID)
	}
	return out
}

func (db *DB) HasChildren(id string) bool {
	id = strings.TrimSpace(id)
	for _, n := range db.nodes {
		if n.Parent() == id {
			return true
		}
	}
	return false
}

// Ancestors returns the parent chain of id, nearest first.
func (db *DB) Ancestors(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	cur, ok := db.nodes[id]
	for ok && cur.ParentID != nil {
		pid := *cur.ParentID
		if seen[pid] {
			break
		}
		seen[pid] = true
		out = append(out, pid)
		cur, ok = db.nodes[pid]
	}
	return out
}

// IsAncestor reports whether a is a (strict) ancestor of b.
func (db *DB) IsAncestor(a, b string) bool {
	for _, id := range db.Ancestors(b) {
		if id == a {
			return true
		}
	}
	return false
}

// Descendants returns every node below id in document order (pre-order, siblings by order).
func (db *DB) Descendants(id string) []string {
	var out []string
	stack := reversed(db.ChildIDs(id))
	seen := map[string]bool{id: true}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		stack = append(stack, reversed(db.ChildIDs(cur))...)
	}
	return out
}

// Depth is the number of ancestors of id.
func (db *DB) Depth(id string) int { return len(db.Ancestors(id)) }

func reversed(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

// Pinned returns copies of every pinned node in document order.
func (db *DB) Pinned() []model.Node {
	var out []model.Node
	for _, id := range db.Descendants("") {
		if n := db.nodes[id]; n.Pinned {
			out = append(out, n.Clone())
		}
	}
	return out
}
