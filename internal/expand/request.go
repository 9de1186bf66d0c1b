package expand

import (
	"graft/internal/macro"
	"graft/internal/syntax"
)

// Request — одно раскрытие: пара (вхождение атрибута, роль).
// Макрос с N ролями на одной декларации порождает N независимых запросов.
type Request struct {
	Target   syntax.DeclID
	AttrIdx  int
	Attr     syntax.Attr
	AttrName string
	Def      *macro.Definition
	Role     macro.RoleSpec

	// Order — позиция цели в pre-order обходе: внешние декларации раньше
	// вложенных. Внутри одной декларации запросы одной роли идут в
	// исходном порядке атрибутов (AttrIdx).
	Order int
}

// requestKey identifies an executed request across feedback rounds.
// Индексы атрибутов стабильны: memberAttribute только дописывает в конец.
type requestKey struct {
	target  syntax.DeclID
	attrIdx int
	role    macro.RoleKind
}

// occKey identifies an attribute occurrence for once-only failure reporting.
type occKey struct {
	target  syntax.DeclID
	attrIdx int
}

// stateKey — элемент visited-множества планировщика: декларация плюс
// отпечаток её списка атрибутов.
type stateKey struct {
	target syntax.DeclID
	fp     uint64
}
