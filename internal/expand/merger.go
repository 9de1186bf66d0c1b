package expand

import (
	"slices"

	"graft/internal/macro"
	"graft/internal/source"
	"graft/internal/syntax"
)

// declFromSpec materialises a detached DeclSpec: имена интернируются,
// origin указывает на декларацию, чьё раскрытие произвело фрагмент, span
// наследуется от атрибута-источника.
func declFromSpec(spec macro.DeclSpec, interner *source.Interner, origin syntax.DeclID, span source.Span) syntax.Decl {
	attrs := make([]syntax.Attr, 0, len(spec.Attrs))
	for _, a := range spec.Attrs {
		attrs = append(attrs, syntax.Attr{
			Name: interner.Intern(a.Name),
			Args: slices.Clone(a.Args),
			Span: span,
		})
	}
	return syntax.Decl{
		Kind:        spec.Kind,
		Name:        interner.Intern(spec.Name),
		Span:        span,
		Attrs:       attrs,
		Origin:      origin,
		Type:        spec.Type,
		Initializer: spec.Initializer,
		Accessors:   slices.Clone(spec.Accessors),
		Params:      slices.Clone(spec.Params),
		Result:      spec.Result,
		Async:       spec.Async,
		Body:        spec.Body,
	}
}

// mergeAttrs unions memberAttribute output into member attribute lists and
// returns the new tree. Это не финальное слияние: результат уходит обратно
// в планировщик на следующий круг.
func mergeAttrs(tree *syntax.Tree, attrs []stagedFragment, interner *source.Interner) *syntax.Tree {
	for _, sf := range attrs {
		if !tree.Has(sf.frag.Member) {
			continue
		}
		tree = tree.WithAttrAdded(sf.frag.Member, syntax.Attr{
			Name: interner.Intern(sf.frag.Attr.Name),
			Args: slices.Clone(sf.frag.Attr.Args),
			Span: sf.req.Attr.Span,
		})
	}
	return tree
}

// mergeBatch applies a gated batch to the tree: member fragments append to
// the enclosing type's member list, peer fragments insert right after their
// target preserving producer order, accessor fragments replace the target's
// accessor block (dropping the initializer). Возвращает новое дерево и
// число слитых фрагментов.
func mergeBatch(tree *syntax.Tree, b *batch, interner *source.Interner) (*syntax.Tree, int) {
	merged := 0

	// member: добавление в конец списка членов типа
	for _, sf := range b.decls {
		if sf.req.Role.Kind != macro.RoleMember {
			continue
		}
		d := declFromSpec(sf.frag.Decl, interner, sf.req.Target, sf.req.Attr.Span)
		tree, _ = tree.WithMemberAppended(sf.req.Target, d)
		merged++
	}

	// peer: сразу после цели, в порядке макросов-производителей
	peerOffsets := make(map[syntax.DeclID]int)
	for _, sf := range b.decls {
		if sf.req.Role.Kind != macro.RolePeer {
			continue
		}
		d := declFromSpec(sf.frag.Decl, interner, sf.req.Target, sf.req.Attr.Span)
		tree, _ = tree.WithPeerAfter(sf.req.Target, d, peerOffsets[sf.req.Target])
		peerOffsets[sf.req.Target]++
		merged++
	}

	// accessor: замена аксессорного блока цели
	for _, sf := range b.accessors {
		tree = tree.WithAccessors(sf.req.Target, sf.frag.Accessors)
		merged++
	}

	return tree, merged
}
