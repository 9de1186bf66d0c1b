package syntax

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Tree is an immutable snapshot of one unit's declaration tree. Declarations
// live in a flat 1-based table addressed by DeclID; IDs are stable across
// versions, new declarations are appended. Every With* operation returns a
// fresh Tree that shares unchanged declarations with its predecessor.
type Tree struct {
	decls   []Decl // decls[0] — заглушка под NoDeclID
	root    DeclID
	version uint32
}

// Root returns the unit root declaration ID.
func (t *Tree) Root() DeclID {
	return t.root
}

// Version returns the snapshot version, starting at 0 for a freshly built
// tree and incremented by every structural operation.
func (t *Tree) Version() uint32 {
	return t.version
}

// Len returns the number of declarations (including the root).
func (t *Tree) Len() int {
	return len(t.decls) - 1
}

// Decl returns a read-only pointer to the declaration.
// Паникует на невалидном ID: движок не должен порождать такие ID.
func (t *Tree) Decl(id DeclID) *Decl {
	if id == NoDeclID || int(id) >= len(t.decls) {
		panic(fmt.Errorf("invalid decl ID %d (len %d)", id, len(t.decls)))
	}
	return &t.decls[id]
}

// Has reports whether the ID addresses a declaration in this snapshot.
func (t *Tree) Has(id DeclID) bool {
	return id != NoDeclID && int(id) < len(t.decls)
}

// Walk обходит дерево в pre-order (внешние декларации раньше вложенных)
// и вызывает fn для каждой декларации, включая корень.
// Возврат false прерывает обход.
func (t *Tree) Walk(fn func(id DeclID, d *Decl) bool) {
	var visit func(id DeclID) bool
	visit = func(id DeclID) bool {
		d := t.Decl(id)
		if !fn(id, d) {
			return false
		}
		for _, m := range d.Members {
			if !visit(m) {
				return false
			}
		}
		return true
	}
	visit(t.root)
}

// PreOrder returns all declaration IDs in pre-order.
func (t *Tree) PreOrder() []DeclID {
	out := make([]DeclID, 0, t.Len())
	t.Walk(func(id DeclID, _ *Decl) bool {
		out = append(out, id)
		return true
	})
	return out
}

// StoredProperties returns the stored-property members of a type-like
// declaration in source order.
func (t *Tree) StoredProperties(id DeclID) []DeclID {
	d := t.Decl(id)
	out := make([]DeclID, 0, len(d.Members))
	for _, m := range d.Members {
		if t.Decl(m).Stored() {
			out = append(out, m)
		}
	}
	return out
}

// clone возвращает копию таблицы деклараций под новую версию дерева.
func (t *Tree) clone(extra int) []Decl {
	out := make([]Decl, len(t.decls), len(t.decls)+extra)
	copy(out, t.decls)
	return out
}

func (t *Tree) next(decls []Decl) *Tree {
	return &Tree{decls: decls, root: t.root, version: t.version + 1}
}

func appendDecl(decls []Decl, d Decl) (DeclID, []Decl) {
	n, err := safecast.Conv[uint32](len(decls))
	if err != nil {
		panic(fmt.Errorf("decl table overflow: %w", err))
	}
	return DeclID(n), append(decls, d)
}

// WithPeerAfter inserts a new sibling declaration immediately after the
// anchor, shifted right by the number of peers already inserted after the
// same anchor in this chain of versions (offset). Returns the new tree and
// the ID of the inserted declaration.
func (t *Tree) WithPeerAfter(anchor DeclID, peer Decl, offset int) (*Tree, DeclID) {
	parentID := t.Decl(anchor).Parent
	if parentID == NoDeclID {
		panic(fmt.Errorf("decl %d has no parent for peer insertion", anchor))
	}

	decls := t.clone(1)
	peer.Parent = parentID
	id, decls := appendDecl(decls, peer)

	parent := &decls[parentID]
	idx := slices.Index(parent.Members, anchor)
	if idx < 0 {
		panic(fmt.Errorf("decl %d is not a member of its parent %d", anchor, parentID))
	}
	pos := idx + 1 + offset
	if pos > len(parent.Members) {
		pos = len(parent.Members)
	}
	members := make([]DeclID, 0, len(parent.Members)+1)
	members = append(members, parent.Members[:pos]...)
	members = append(members, id)
	members = append(members, parent.Members[pos:]...)
	parent.Members = members

	return t.next(decls), id
}

// WithMemberAppended appends a new member to a type-like declaration.
func (t *Tree) WithMemberAppended(parentID DeclID, member Decl) (*Tree, DeclID) {
	decls := t.clone(1)
	member.Parent = parentID
	id, decls := appendDecl(decls, member)

	parent := &decls[parentID]
	members := make([]DeclID, 0, len(parent.Members)+1)
	members = append(members, parent.Members...)
	members = append(members, id)
	parent.Members = members

	return t.next(decls), id
}

// WithAccessors replaces the target's accessor block. The initializer is
// removed: preserving or diagnosing it is the macro implementation's
// responsibility, not the merger's.
func (t *Tree) WithAccessors(target DeclID, accessors []Accessor) *Tree {
	decls := t.clone(0)
	d := &decls[target]
	d.Accessors = slices.Clone(accessors)
	d.Initializer = ""
	return t.next(decls)
}

// WithAttrAdded unions an attribute into the target's attribute list.
// Атрибут с тем же именем уже есть — дерево возвращается без изменений
// (union-семантика memberAttribute).
func (t *Tree) WithAttrAdded(target DeclID, attr Attr) *Tree {
	d := t.Decl(target)
	if d.HasAttr(attr.Name) {
		return t
	}
	decls := t.clone(0)
	nd := &decls[target]
	attrs := make([]Attr, 0, len(nd.Attrs)+1)
	attrs = append(attrs, nd.Attrs...)
	attrs = append(attrs, attr)
	nd.Attrs = attrs
	return t.next(decls)
}
