package expand

import (
	"graft/internal/macro"
	"graft/internal/syntax"
)

// stagedFragment — принятый фрагмент, ожидающий слияния в конце батча.
type stagedFragment struct {
	req  *Request
	frag macro.Fragment
}

// batch accumulates one round's expansion output. Fragments are staged, not
// merged: the dependency graph gates the whole batch before anything touches
// the tree. Фазы батча исполняются последовательно; публикация staged-членов
// происходит только на границе фаз, поэтому конкурентные инвокации одной
// фазы читают visible без блокировок.
type batch struct {
	decls     []stagedFragment // FragmentDecl: роли member и peer
	accessors []stagedFragment // FragmentAccessors
	attrs     []stagedFragment // FragmentAttr: memberAttribute

	// pending — decl-фрагменты текущей фазы, ещё не видимые инвокациям.
	pending []stagedFragment
	// visible — staged-члены, видимые инвокациям следующих фаз,
	// по типу-владельцу.
	visible map[syntax.DeclID][]macro.StagedMember

	graph *depGraph
}

func newBatch() *batch {
	return &batch{
		visible: make(map[syntax.DeclID][]macro.StagedMember),
		graph:   newDepGraph(),
	}
}

// stage accepts a validated fragment.
func (b *batch) stage(req *Request, frag macro.Fragment) {
	sf := stagedFragment{req: req, frag: frag}
	switch frag.Kind {
	case macro.FragmentDecl:
		b.decls = append(b.decls, sf)
		b.pending = append(b.pending, sf)
	case macro.FragmentAccessors:
		b.accessors = append(b.accessors, sf)
	case macro.FragmentAttr:
		b.attrs = append(b.attrs, sf)
	}
}

// publish делает decl-фрагменты завершившейся фазы видимыми инвокациям
// следующих фаз. Вызывается только на границе фаз.
func (b *batch) publish(tree *syntax.Tree) {
	for _, sf := range b.pending {
		owner := sf.req.Target
		if sf.req.Role.Kind == macro.RolePeer {
			owner = tree.Decl(sf.req.Target).Parent
		}
		b.visible[owner] = append(b.visible[owner], macro.StagedMember{
			Spec:   sf.frag.Decl,
			Origin: sf.req.Target,
		})
	}
	b.pending = nil
}

// StagedMembers implements macro.StagedView.
func (b *batch) StagedMembers(typeID syntax.DeclID) []macro.StagedMember {
	return b.visible[typeID]
}

// takeAttrs возвращает и сбрасывает staged атрибутные фрагменты.
func (b *batch) takeAttrs() []stagedFragment {
	attrs := b.attrs
	b.attrs = nil
	return attrs
}

// size returns the number of staged decl/accessor fragments.
func (b *batch) size() int {
	return len(b.decls) + len(b.accessors)
}
