package expand

import (
	"hash/fnv"

	"graft/internal/source"
	"graft/internal/syntax"
)

// attrFingerprint строит отпечаток списка атрибутов декларации: имена и
// аргументы в исходном порядке. Порядок значим: memberAttribute только
// дописывает, так что рост списка всегда меняет отпечаток.
func attrFingerprint(interner *source.Interner, d *syntax.Decl) uint64 {
	h := fnv.New64a()
	for i := range d.Attrs {
		name, _ := interner.Lookup(d.Attrs[i].Name)
		h.Write([]byte(name))
		h.Write([]byte{0})
		for _, arg := range d.Attrs[i].Args {
			h.Write([]byte(arg))
			h.Write([]byte{1})
		}
		h.Write([]byte{2})
	}
	return h.Sum64()
}
