package macro

import (
	"graft/internal/diag"
	"graft/internal/source"
	"graft/internal/syntax"
)

// AttrSpec — атрибут в отсоединённом виде (имена строками, до интернирования).
type AttrSpec struct {
	Name string
	Args []string
}

// DeclSpec is a produced declaration in detached form: plain strings instead
// of interned IDs, no tree position. The merger interns names and attaches
// the declaration at the position dictated by the fragment's role.
type DeclSpec struct {
	Kind        syntax.DeclKind
	Name        string
	Type        string
	Initializer string
	Params      []syntax.Param
	Result      string
	Async       bool
	Body        string
	Attrs       []AttrSpec
	Accessors   []syntax.Accessor
}

// Stored reports whether the spec describes a stored property.
func (s *DeclSpec) Stored() bool {
	return s.Kind == syntax.DeclVar && len(s.Accessors) == 0
}

type FragmentKind uint8

const (
	// FragmentDecl — новая декларация (роли peer и member).
	FragmentDecl FragmentKind = iota
	// FragmentAccessors — аксессорный блок, заменяющий блок цели.
	FragmentAccessors
	// FragmentAttr — атрибут, добавляемый члену типа (роль memberAttribute).
	FragmentAttr
)

// Fragment — один элемент результата раскрытия, помеченный введёнными именами.
type Fragment struct {
	Kind      FragmentKind
	Decl      DeclSpec          // FragmentDecl
	Accessors []syntax.Accessor // FragmentAccessors
	Attr      AttrSpec          // FragmentAttr
	Member    syntax.DeclID     // FragmentAttr: какому члену добавить
}

// IntroducedNames возвращает имена, которые фрагмент вводит в область
// видимости. Аксессорные и атрибутные фрагменты имён не вводят.
func (f *Fragment) IntroducedNames() []string {
	if f.Kind == FragmentDecl {
		return []string{f.Decl.Name}
	}
	return nil
}

// Result — упорядоченная последовательность фрагментов одного раскрытия.
type Result struct {
	Fragments []Fragment
}

// ImplFunc — функция раскрытия одной роли. Обязана быть чистой функцией от
// (атрибут, снапшот цели, контекст): никакого состояния вне Invocation.
type ImplFunc func(inv *Invocation) (Result, error)

// StagedMember — член типа, уже произведённый другим раскрытием текущего
// батча, но ещё не слитый в дерево.
type StagedMember struct {
	Spec   DeclSpec
	Origin syntax.DeclID // декларация, чьё раскрытие произвело член
}

// StagedView — доступ инвокации к ещё не слитым результатам предыдущих фаз
// текущего батча. Реализуется планировщиком.
type StagedView interface {
	StagedMembers(typeID syntax.DeclID) []StagedMember
}

// StoredProperty — элемент списка stored-свойств, видимый инвокации.
type StoredProperty struct {
	Name string
	Type string
	// Origin не равен NoDeclID, если свойство произведено другим
	// раскрытием (слитым в этом прогоне или ожидающим в батче).
	Origin syntax.DeclID
}

// Invocation carries everything a role implementation may read: the
// attribute occurrence, the target snapshot, and the expansion context
// (unique names, diagnostics). Reads of other expansions' outputs are
// recorded for cycle detection.
type Invocation struct {
	Role     RoleKind
	AttrName string
	AttrArgs []string
	Span     source.Span

	Target syntax.DeclID
	Tree   *syntax.Tree

	// Интернер дерева: только для чтения имён.
	Interner *source.Interner

	reporter diag.Reporter
	names    *UniqueNames
	scope    uint64
	nextName uint64
	staged   StagedView

	reads []syntax.DeclID
}

// NewInvocation constructs an invocation context. The scheduler allocates
// the unique-name scope sequentially, so generated names are deterministic
// for a fixed request order regardless of execution interleaving.
func NewInvocation(
	role RoleKind,
	attrName string,
	attrArgs []string,
	span source.Span,
	target syntax.DeclID,
	tree *syntax.Tree,
	interner *source.Interner,
	reporter diag.Reporter,
	names *UniqueNames,
	staged StagedView,
) *Invocation {
	return &Invocation{
		Role:     role,
		AttrName: attrName,
		AttrArgs: attrArgs,
		Span:     span,
		Target:   target,
		Tree:     tree,
		Interner: interner,
		reporter: reporter,
		names:    names,
		scope:    names.NextScope(),
		staged:   staged,
	}
}

// TargetDecl returns the target declaration snapshot.
func (inv *Invocation) TargetDecl() *syntax.Decl {
	return inv.Tree.Decl(inv.Target)
}

// TargetName returns the target's base name.
func (inv *Invocation) TargetName() string {
	return inv.Interner.MustLookup(inv.TargetDecl().Name)
}

// UniqueName возвращает свежее уникальное имя; всегда проходит гигиену.
func (inv *Invocation) UniqueName(base string) string {
	inv.nextName++
	return Format(inv.scope, inv.nextName, base)
}

// Diag отправляет диагностику из тела макроса (вспомогательные
// предупреждения; ошибка реализации возвращается из ImplFunc как error).
func (inv *Invocation) Diag(sev diag.Severity, code diag.Code, msg string) {
	if inv.reporter != nil {
		inv.reporter.Report(code, sev, inv.Span, msg, nil)
	}
}

// DependsOn records that this expansion's input depends on output produced
// while expanding other. Ребро попадает в граф зависимостей батча.
func (inv *Invocation) DependsOn(other syntax.DeclID) {
	if other != syntax.NoDeclID && other != inv.Target {
		inv.reads = append(inv.reads, other)
	}
}

// StoredProperties returns the stored properties of a type-like declaration
// visible to this invocation: merged members plus members staged by earlier
// phases of the current batch. Чтение staged-члена записывает зависимость
// от его раскрытия-производителя.
func (inv *Invocation) StoredProperties(typeID syntax.DeclID) []StoredProperty {
	var out []StoredProperty
	for _, id := range inv.Tree.StoredProperties(typeID) {
		d := inv.Tree.Decl(id)
		sp := StoredProperty{
			Name:   inv.Interner.MustLookup(d.Name),
			Type:   d.Type,
			Origin: d.Origin,
		}
		if d.Origin != syntax.NoDeclID {
			inv.DependsOn(d.Origin)
		}
		out = append(out, sp)
	}
	if inv.staged != nil {
		for _, m := range inv.staged.StagedMembers(typeID) {
			if !m.Spec.Stored() {
				continue
			}
			inv.DependsOn(m.Origin)
			out = append(out, StoredProperty{
				Name:   m.Spec.Name,
				Type:   m.Spec.Type,
				Origin: m.Origin,
			})
		}
	}
	return out
}

// Reads returns the recorded dependency targets (for the cycle detector).
func (inv *Invocation) Reads() []syntax.DeclID {
	return inv.reads
}
