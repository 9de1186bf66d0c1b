package expand

import (
	"context"
	"fmt"
	"strings"

	"graft/internal/diag"
	"graft/internal/macro"
	"graft/internal/source"
	"graft/internal/syntax"
)

// DefaultMaxRounds ограничивает число кругов обратной связи на единицу:
// memberAttribute может порождать новые атрибуты, но не бесконечно.
const DefaultMaxRounds = 16

// Options configures the engine.
type Options struct {
	// MaxRounds bounds feedback iterations per unit; 0 means DefaultMaxRounds.
	MaxRounds int
	// Jobs bounds concurrent invocations per phase; 0 means GOMAXPROCS.
	Jobs int
}

// Stats summarises one unit expansion.
type Stats struct {
	Rounds             int
	Invocations        int
	FragmentsMerged    int
	FragmentsDiscarded int
}

// Engine — движок раскрытия attached-макросов одной единицы компиляции.
// Реестр после регистрации только читается; единственное разделяемое
// изменяемое состояние прогона — аллокатор уникальных имён и сток
// диагностик.
type Engine struct {
	registry *macro.Registry
	interner *source.Interner
	opts     Options
}

// New constructs an engine over a read-only registry. The interner must be
// the one the unit tree was built with.
func New(registry *macro.Registry, interner *source.Interner, opts Options) *Engine {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	return &Engine{registry: registry, interner: interner, opts: opts}
}

// ExpandUnit runs expansion to a fixed point and returns the final merged
// tree. Диагностики уходят в reporter; error возвращается только при отмене
// контекста. Дерево результата — всегда итог целых консистентных батчей:
// батч, сорванный циклом или нетерминацией, не сливается вовсе.
func (e *Engine) ExpandUnit(ctx context.Context, tree *syntax.Tree, reporter diag.Reporter) (*syntax.Tree, Stats, error) {
	var stats Stats

	syncReporter := diag.NewSyncReporter(reporter)
	names := &macro.UniqueNames{}
	res := newResolver(e.registry, e.interner, reporter)
	done := make(map[requestKey]struct{})
	seen := make(map[stateKey]struct{})

	for round := 0; ; round++ {
		requests, repeated := e.collectRequests(tree, res, done, seen)
		if repeated != syntax.NoDeclID {
			d := tree.Decl(repeated)
			name, _ := e.interner.Lookup(d.Name)
			diag.ReportError(reporter, diag.ExpNonterminating, d.Span,
				fmt.Sprintf("macro expansion revisits declaration '%s' in an already-seen attribute state", name)).
				Emit()
			return tree, stats, nil
		}
		if len(requests) == 0 {
			break
		}
		if round >= e.opts.MaxRounds {
			diag.ReportError(reporter, diag.ExpNonterminating, tree.Decl(tree.Root()).Span,
				fmt.Sprintf("macro expansion did not reach a fixed point after %d feedback rounds", e.opts.MaxRounds)).
				Emit()
			return tree, stats, nil
		}
		stats.Rounds++

		// Снапшот начала круга: срыв батча откатывает и промежуточное
		// слияние memberAttribute, а не только staged-фрагменты.
		roundStart := tree
		attrsApplied := 0

		b := newBatch()
		for _, kind := range macro.RoleKinds() {
			phase := filterRequests(requests, kind)
			if len(phase) == 0 {
				continue
			}

			outcomes, err := e.runPhase(ctx, tree, phase, b, syncReporter, names)
			if err != nil {
				return tree, stats, err
			}
			stats.Invocations += len(phase)

			for i := range phase {
				req := &phase[i]
				done[requestKey{target: req.Target, attrIdx: req.AttrIdx, role: req.Role.Kind}] = struct{}{}

				out := outcomes[i]
				for _, read := range out.inv.Reads() {
					b.graph.addEdge(read, req.Target)
				}
				if !out.ok {
					continue
				}
				targetName := e.interner.MustLookup(tree.Decl(req.Target).Name)
				for _, frag := range out.res.Fragments {
					if !validateFragment(req, targetName, &frag, reporter) {
						stats.FragmentsDiscarded++
						continue
					}
					b.stage(req, frag)
				}
			}
			b.publish(tree)

			if kind == macro.RoleMemberAttribute {
				// memberAttribute сливается сразу: его выход — вход
				// резолвера, а не финальный результат.
				attrs := b.takeAttrs()
				attrsApplied += len(attrs)
				tree = mergeAttrs(tree, attrs, e.interner)
			}
		}

		// Детектор циклов гейтит весь батч: при срыве не сливается ничего,
		// включая уже применённые атрибутные фрагменты этого круга.
		if cycle := b.graph.findCycle(); cycle != nil {
			stats.FragmentsDiscarded += b.size() + attrsApplied
			e.reportCycle(roundStart, reporter, cycle)
			return roundStart, stats, nil
		}

		var merged int
		tree, merged = mergeBatch(tree, b, e.interner)
		stats.FragmentsMerged += merged
	}

	return tree, stats, nil
}

// collectRequests resolves all declarations in pre-order and returns the
// round's requests. Повтор (декларация, отпечаток атрибутов) — признак
// нетерминации: возвращается ID повторившейся декларации.
func (e *Engine) collectRequests(
	tree *syntax.Tree,
	res *resolver,
	done map[requestKey]struct{},
	seen map[stateKey]struct{},
) ([]Request, syntax.DeclID) {
	var requests []Request
	for order, id := range tree.PreOrder() {
		reqs := res.resolveDecl(tree, id, order, done)
		if len(reqs) == 0 {
			continue
		}
		key := stateKey{target: id, fp: attrFingerprint(e.interner, tree.Decl(id))}
		if _, ok := seen[key]; ok {
			return nil, id
		}
		seen[key] = struct{}{}
		requests = append(requests, reqs...)
	}
	return requests, syntax.NoDeclID
}

func filterRequests(requests []Request, kind macro.RoleKind) []Request {
	var out []Request
	for _, req := range requests {
		if req.Role.Kind == kind {
			out = append(out, req)
		}
	}
	return out
}

func (e *Engine) reportCycle(tree *syntax.Tree, reporter diag.Reporter, cycle []syntax.DeclID) {
	names := make([]string, 0, len(cycle))
	for _, id := range cycle {
		name, _ := e.interner.Lookup(tree.Decl(id).Name)
		if name == "" {
			name = tree.Decl(id).Kind.String()
		}
		names = append(names, name)
	}
	builder := diag.ReportError(reporter, diag.ExpDependencyCycle, tree.Decl(cycle[0]).Span,
		fmt.Sprintf("expansion dependency cycle: %s", strings.Join(names, " -> ")))
	for _, id := range cycle[:len(cycle)-1] {
		builder.WithNote(tree.Decl(id).Span, "declaration participates in the cycle")
	}
	builder.Emit()
}
