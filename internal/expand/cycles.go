package expand

import (
	"slices"

	"graft/internal/syntax"
)

// depGraph — направленный граф зависимостей между декларациями одного
// батча. Ребро producer→consumer: раскрытие consumer-а потребовало выход,
// произведённый при раскрытии producer-а.
type depGraph struct {
	edges map[syntax.DeclID][]syntax.DeclID
	nodes []syntax.DeclID
}

func newDepGraph() *depGraph {
	return &depGraph{edges: make(map[syntax.DeclID][]syntax.DeclID)}
}

func (g *depGraph) addNode(id syntax.DeclID) {
	if _, ok := g.edges[id]; !ok {
		g.edges[id] = nil
		g.nodes = append(g.nodes, id)
	}
}

func (g *depGraph) addEdge(producer, consumer syntax.DeclID) {
	g.addNode(producer)
	g.addNode(consumer)
	if !slices.Contains(g.edges[producer], consumer) {
		g.edges[producer] = append(g.edges[producer], consumer)
	}
}

type nodeColor uint8

const (
	colorWhite nodeColor = iota
	colorGray
	colorBlack
)

// findCycle запускает DFS с трёхцветной раскраской и возвращает первый
// найденный цикл как путь деклараций (замкнутый: первый элемент повторён
// в конце). Nil — цикла нет.
func (g *depGraph) findCycle() []syntax.DeclID {
	colors := make(map[syntax.DeclID]nodeColor, len(g.nodes))
	var stack []syntax.DeclID
	var cycle []syntax.DeclID

	var visit func(id syntax.DeclID) bool
	visit = func(id syntax.DeclID) bool {
		colors[id] = colorGray
		stack = append(stack, id)

		for _, next := range g.edges[id] {
			switch colors[next] {
			case colorGray:
				// нашли задний фронт: вырезаем цикл из стека
				start := slices.Index(stack, next)
				cycle = append(slices.Clone(stack[start:]), next)
				return true
			case colorWhite:
				if visit(next) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		colors[id] = colorBlack
		return false
	}

	// детерминированный порядок старта обхода
	starts := slices.Clone(g.nodes)
	slices.Sort(starts)
	for _, id := range starts {
		if colors[id] == colorWhite {
			if visit(id) {
				return cycle
			}
		}
	}
	return nil
}
