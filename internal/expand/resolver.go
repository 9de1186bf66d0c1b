package expand

import (
	"fmt"

	"graft/internal/diag"
	"graft/internal/macro"
	"graft/internal/source"
	"graft/internal/syntax"
)

// resolver maps attribute occurrences to macro definitions and applicable
// roles. Ошибки разрешения локальны: сбой одного вхождения не мешает
// разрешению соседних.
type resolver struct {
	registry *macro.Registry
	interner *source.Interner
	reporter diag.Reporter

	// reported — вхождения, сбой которых уже диагностирован: каждое
	// вхождение даёт ровно одну диагностику за прогон.
	reported map[occKey]struct{}
}

func newResolver(registry *macro.Registry, interner *source.Interner, reporter diag.Reporter) *resolver {
	return &resolver{
		registry: registry,
		interner: interner,
		reporter: reporter,
		reported: make(map[occKey]struct{}),
	}
}

// resolveDecl maps the declaration's attribute occurrences (source
// left-to-right order) to requests, skipping those already executed.
func (r *resolver) resolveDecl(tree *syntax.Tree, id syntax.DeclID, order int, done map[requestKey]struct{}) []Request {
	d := tree.Decl(id)
	if d.Kind == syntax.DeclUnit {
		return nil
	}

	var out []Request
	for attrIdx := range d.Attrs {
		attr := d.Attrs[attrIdx]
		name := r.interner.MustLookup(attr.Name)

		defs := r.registry.Lookup(name)
		switch {
		case len(defs) == 0:
			r.reportOnce(id, attrIdx, diag.ResUnknownMacro, attr.Span,
				fmt.Sprintf("unknown macro '%s'", name))
			continue
		case len(defs) > 1:
			r.reportOnce(id, attrIdx, diag.ResAmbiguousMacro, attr.Span,
				fmt.Sprintf("macro '%s' is ambiguous: %d definitions are visible", name, len(defs)))
			continue
		}
		def := defs[0]

		// Уже исполненные роли проверяются до применимости: успешное
		// раскрытие может изменить синтаксис цели (аксессорный блок
		// снимает Stored), и на повторном разрешении роль перестаёт
		// подходить. Это не ошибка — вхождение уже отработало.
		applicable := 0
		executed := 0
		for _, role := range def.Roles {
			key := requestKey{target: id, attrIdx: attrIdx, role: role.Kind}
			if _, ok := done[key]; ok {
				executed++
				continue
			}
			if !roleApplicable(role, d) {
				continue
			}
			applicable++
			out = append(out, Request{
				Target:   id,
				AttrIdx:  attrIdx,
				Attr:     attr,
				AttrName: name,
				Def:      def,
				Role:     role,
				Order:    order,
			})
		}
		if applicable == 0 && executed == 0 {
			r.reportOnce(id, attrIdx, diag.ResRoleNotApplicable, attr.Span,
				fmt.Sprintf("macro '%s' has no role applicable to this %s declaration", name, d.Kind))
		}
	}
	return out
}

func (r *resolver) reportOnce(id syntax.DeclID, attrIdx int, code diag.Code, span source.Span, msg string) {
	key := occKey{target: id, attrIdx: attrIdx}
	if _, ok := r.reported[key]; ok {
		return
	}
	r.reported[key] = struct{}{}
	diag.ReportError(r.reporter, code, span, msg).Emit()
}

// roleApplicable решает, применима ли роль к синтаксической позиции цели:
// базовая матрица (роль × вид декларации) плюс объявленные требования.
func roleApplicable(role macro.RoleSpec, d *syntax.Decl) bool {
	ok := false
	switch role.Kind {
	case macro.RolePeer:
		ok = d.Kind != syntax.DeclUnit
	case macro.RoleMember, macro.RoleMemberAttribute:
		ok = d.Kind == syntax.DeclStruct || d.Kind == syntax.DeclExtension
	case macro.RoleAccessor:
		ok = d.Kind == syntax.DeclVar || d.Kind == syntax.DeclSubscript
	}
	if !ok {
		return false
	}
	if role.Requires&macro.RequireAsync != 0 && !(d.Kind == syntax.DeclFunc && d.Async) {
		return false
	}
	if role.Requires&macro.RequireStored != 0 && !d.Stored() {
		return false
	}
	return true
}
