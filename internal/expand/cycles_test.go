package expand

import (
	"slices"
	"testing"

	"graft/internal/source"
	"graft/internal/syntax"
)

func TestDepGraphNoCycle(t *testing.T) {
	g := newDepGraph()
	g.addEdge(1, 2)
	g.addEdge(2, 3)
	g.addEdge(1, 3)

	if cycle := g.findCycle(); cycle != nil {
		t.Fatalf("в ацикличном графе найден цикл: %v", cycle)
	}
}

func TestDepGraphFindsCycle(t *testing.T) {
	g := newDepGraph()
	g.addEdge(1, 2)
	g.addEdge(2, 3)
	g.addEdge(3, 1)
	g.addEdge(3, 4) // хвост вне цикла

	cycle := g.findCycle()
	if cycle == nil {
		t.Fatal("цикл не найден")
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("путь цикла должен быть замкнут: %v", cycle)
	}
	want := []syntax.DeclID{1, 2, 3, 1}
	if !slices.Equal(cycle, want) {
		t.Errorf("ожидался путь %v, получен %v", want, cycle)
	}
}

func TestDepGraphSelfLoop(t *testing.T) {
	g := newDepGraph()
	g.addEdge(5, 5)

	cycle := g.findCycle()
	if !slices.Equal(cycle, []syntax.DeclID{5, 5}) {
		t.Errorf("ожидалась петля [5 5], получено %v", cycle)
	}
}

func TestDepGraphDuplicateEdges(t *testing.T) {
	g := newDepGraph()
	g.addEdge(1, 2)
	g.addEdge(1, 2)

	if len(g.edges[1]) != 1 {
		t.Errorf("дубликат ребра не должен добавляться: %v", g.edges[1])
	}
	if cycle := g.findCycle(); cycle != nil {
		t.Fatalf("найден ложный цикл: %v", cycle)
	}
}

func TestAttrFingerprintGrowsWithAttrs(t *testing.T) {
	interner := source.NewInterner()
	b := syntax.NewBuilder(interner, source.Span{})
	fn := b.NewFunc(b.Root(), "load", nil, "", false, "", source.Span{})
	b.AddAttr(fn, "First", nil, source.Span{})
	tree := b.Build()

	before := attrFingerprint(interner, tree.Decl(fn))

	grown := tree.WithAttrAdded(fn, syntax.Attr{Name: interner.Intern("Second")})
	after := attrFingerprint(interner, grown.Decl(fn))
	if before == after {
		t.Error("добавление атрибута должно менять отпечаток")
	}

	// аргументы тоже участвуют в отпечатке
	withArgs := syntax.Decl{Attrs: []syntax.Attr{{Name: interner.Intern("First"), Args: []string{"x"}}}}
	plain := syntax.Decl{Attrs: []syntax.Attr{{Name: interner.Intern("First")}}}
	if attrFingerprint(interner, &withArgs) == attrFingerprint(interner, &plain) {
		t.Error("аргументы атрибута должны менять отпечаток")
	}
}
