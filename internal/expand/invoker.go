package expand

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"graft/internal/diag"
	"graft/internal/macro"
	"graft/internal/syntax"
)

// invokeOutcome — результат одной инвокации вместе с её контекстом
// (записанные зависимости нужны детектору циклов).
type invokeOutcome struct {
	res macro.Result
	inv *macro.Invocation
	ok  bool
}

// runPhase executes one role phase of a batch. Requests for independent
// declarations run concurrently; requests sharing a declaration run
// sequentially in request order. Контексты инвокаций создаются заранее и
// последовательно: скоупы уникальных имён детерминированы при любом
// чередовании исполнения.
func (e *Engine) runPhase(
	ctx context.Context,
	tree *syntax.Tree,
	phase []Request,
	b *batch,
	reporter diag.Reporter,
	names *macro.UniqueNames,
) ([]invokeOutcome, error) {
	outcomes := make([]invokeOutcome, len(phase))

	invs := make([]*macro.Invocation, len(phase))
	for i := range phase {
		req := &phase[i]
		invs[i] = macro.NewInvocation(
			req.Role.Kind,
			req.AttrName,
			req.Attr.Args,
			req.Attr.Span,
			req.Target,
			tree,
			e.interner,
			reporter,
			names,
			b,
		)
	}

	// Группируем по целевой декларации, сохраняя порядок запросов.
	groups := make(map[syntax.DeclID][]int)
	var groupOrder []syntax.DeclID
	for i := range phase {
		target := phase[i].Target
		if _, ok := groups[target]; !ok {
			groupOrder = append(groupOrder, target)
		}
		groups[target] = append(groups[target], i)
	}

	jobs := e.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(groupOrder)))

	for _, target := range groupOrder {
		indexes := groups[target]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			for _, i := range indexes {
				outcomes[i] = invokeRequest(&phase[i], invs[i], reporter)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// invokeRequest calls the role implementation behind a panic boundary.
// Отказ реализации — диагностика ExpMacroImplementation на span атрибута и
// ноль фрагментов; остальные вхождения продолжаются.
func invokeRequest(req *Request, inv *macro.Invocation, reporter diag.Reporter) (out invokeOutcome) {
	out = invokeOutcome{inv: inv}

	defer func() {
		if r := recover(); r != nil {
			diag.ReportError(reporter, diag.ExpMacroImplementation, req.Attr.Span,
				fmt.Sprintf("macro '%s' (%s role) panicked: %v", req.AttrName, req.Role.Kind, r)).
				Emit()
			out.res = macro.Result{}
			out.ok = false
		}
	}()

	fn, ok := req.Def.Impl(req.Role.Kind)
	if !ok {
		// реестр гарантирует реализацию на каждую роль
		panic(fmt.Errorf("macro %q has no impl for role %s", req.AttrName, req.Role.Kind))
	}

	res, err := fn(inv)
	if err != nil {
		diag.ReportError(reporter, diag.ExpMacroImplementation, req.Attr.Span,
			fmt.Sprintf("macro '%s' (%s role) failed: %v", req.AttrName, req.Role.Kind, err)).
			Emit()
		return invokeOutcome{inv: inv}
	}
	return invokeOutcome{res: res, inv: inv, ok: true}
}
