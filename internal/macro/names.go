package macro

import (
	"fmt"
	"strings"
	"sync/atomic"
)

const generatedPrefix = "__macro"

// UniqueNames — аллокатор уникальных имён одного прогона компиляции:
// единственное разделяемое изменяемое состояние между инвокациями.
// Счётчик атомарный; детерминизм имён обеспечивается тем, что каждая
// инвокация получает собственное пространство имён по своему
// детерминированному порядковому номеру (см. Invocation.UniqueName).
type UniqueNames struct {
	n atomic.Uint64
}

// NextScope выделяет номер пространства имён для одной инвокации.
func (u *UniqueNames) NextScope() uint64 {
	return u.n.Add(1)
}

// Format строит уникальное имя в выделенном пространстве.
func Format(scope, n uint64, base string) string {
	return fmt.Sprintf("%s%d_%d_%s", generatedPrefix, scope, n, base)
}

// IsGeneratedName reports whether the name was produced by the unique-name
// allocator. Такие имена всегда проходят проверку гигиены.
func IsGeneratedName(name string) bool {
	return strings.HasPrefix(name, generatedPrefix)
}
