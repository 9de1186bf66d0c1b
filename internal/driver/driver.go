package driver

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"graft/internal/diag"
	"graft/internal/expand"
	"graft/internal/project"
	"graft/internal/source"
	"graft/internal/syntax"
)

// Options настраивает прогон драйвера.
type Options struct {
	// MaxDiagnostics ограничивает число диагностик на единицу (0 — 100).
	MaxDiagnostics int
	// Jobs ограничивает параллелизм между единицами и внутри движка
	// (0 — GOMAXPROCS).
	Jobs int
	// MaxRounds передаётся движку (0 — expand.DefaultMaxRounds).
	MaxRounds int
	// Cache — дисковый кэш чистых раскрытий; nil выключает кэширование.
	Cache *DiskCache
	// Observer получает события границ единиц; nil — без событий.
	Observer UnitObserver
}

// UnitResult содержит итог раскрытия одной единицы компиляции.
type UnitResult struct {
	Path string

	// Tree и Interner заполнены, если единица раскрывалась в этом прогоне;
	// на попадании в кэш вместо них — только Rendered.
	Tree     *syntax.Tree
	Interner *source.Interner

	Rendered  string
	Stats     expand.Stats
	Bag       *diag.Bag
	FromCache bool
}

// RunResult — итог прогона: результаты по единицам в порядке путей на входе
// плюс диагностики уровня проекта (манифест).
type RunResult struct {
	FileSet *source.FileSet
	Units   []UnitResult
	Bag     *diag.Bag
}

// HasErrors reports whether the run or any of its units produced errors.
func (r *RunResult) HasErrors() bool {
	if r.Bag.HasErrors() {
		return true
	}
	for i := range r.Units {
		if r.Units[i].Bag != nil && r.Units[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

const defaultMaxDiagnostics = 100

// ExpandUnits раскрывает набор единиц под одним манифестом. Единицы
// независимы и обрабатываются параллельно; порядок результатов совпадает
// с порядком путей. error возвращается только при отмене контекста и
// инфраструктурных сбоях; пользовательские проблемы — диагностики.
func ExpandUnits(ctx context.Context, manifestPath string, unitPaths []string, opts Options) (*RunResult, error) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}

	run := &RunResult{
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}

	manifest, err := project.LoadManifest(manifestPath)
	if err != nil {
		diag.ReportError(diag.BagReporter{Bag: run.Bag}, diag.PrjManifestInvalid, source.Span{}, err.Error()).Emit()
		return run, nil
	}
	registry, err := manifest.BuildRegistry()
	if err != nil {
		code := diag.PrjManifestInvalid
		if errors.Is(err, project.ErrUnknownImpl) {
			code = diag.PrjUnknownImpl
		}
		diag.ReportError(diag.BagReporter{Bag: run.Bag}, code, source.Span{}, err.Error()).Emit()
		return run, nil
	}

	manifestHash, err := project.HashFile(manifestPath)
	if err != nil {
		return nil, err
	}

	// Загрузка последовательная: FileSet не рассчитан на конкурентные Add.
	run.Units = make([]UnitResult, len(unitPaths))
	type pending struct {
		index    int
		tree     *syntax.Tree
		interner *source.Interner
		key      project.Digest
	}
	var work []pending

	for i, path := range unitPaths {
		res := &run.Units[i]
		res.Path = path
		res.Bag = diag.NewBag(opts.MaxDiagnostics)

		unitHash, err := project.HashFile(path)
		if err != nil {
			diag.ReportError(diag.BagReporter{Bag: res.Bag}, diag.PrjUnitInvalid, source.Span{},
				"failed to read unit: "+err.Error()).Emit()
			continue
		}
		key := cacheKey(manifestHash, unitHash)

		var payload DiskPayload
		if hit, err := opts.Cache.Get(key, &payload); err == nil && hit {
			res.Rendered = payload.Rendered
			res.Stats = expand.Stats{
				Rounds:             payload.Rounds,
				Invocations:        payload.Invocations,
				FragmentsMerged:    payload.FragmentsMerged,
				FragmentsDiscarded: payload.FragmentsDiscarded,
			}
			res.FromCache = true
			continue
		}

		interner := source.NewInterner()
		tree, err := project.LoadUnit(run.FileSet, interner, path)
		if err != nil {
			diag.ReportError(diag.BagReporter{Bag: res.Bag}, diag.PrjUnitInvalid, source.Span{}, err.Error()).Emit()
			continue
		}
		work = append(work, pending{index: i, tree: tree, interner: interner, key: key})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	if len(work) > 0 {
		g.SetLimit(min(jobs, len(work)))
	}

	for _, w := range work {
		w := w
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res := &run.Units[w.index]
			observe(opts.Observer, UnitEvent{
				Path: res.Path, Index: w.index, Total: len(unitPaths), Status: UnitStart,
			})
			started := time.Now()

			engine := expand.New(registry, w.interner, expand.Options{
				MaxRounds: opts.MaxRounds,
				Jobs:      jobs,
			})
			expanded, stats, err := engine.ExpandUnit(gctx, w.tree, diag.BagReporter{Bag: res.Bag})
			if err != nil {
				return err
			}

			res.Tree = expanded
			res.Interner = w.interner
			res.Stats = stats
			res.Rendered = syntax.Render(expanded, w.interner)

			if res.Bag.Len() == 0 {
				// Кэшируются только чистые раскрытия: диагностики должны
				// пересчитываться с живыми span-ами.
				_ = opts.Cache.Put(w.key, &DiskPayload{
					Schema:             diskCacheSchemaVersion,
					UnitPath:           res.Path,
					Rendered:           res.Rendered,
					Rounds:             stats.Rounds,
					Invocations:        stats.Invocations,
					FragmentsMerged:    stats.FragmentsMerged,
					FragmentsDiscarded: stats.FragmentsDiscarded,
				})
			}

			observe(opts.Observer, UnitEvent{
				Path: res.Path, Index: w.index, Total: len(unitPaths), Status: UnitEnd,
				Elapsed: time.Since(started),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return run, err
	}

	for i := range run.Units {
		if run.Units[i].FromCache {
			observe(opts.Observer, UnitEvent{
				Path: run.Units[i].Path, Index: i, Total: len(unitPaths),
				Status: UnitEnd, FromCache: true,
			})
		}
	}

	return run, nil
}

// ExpandUnit — удобная обёртка для одной единицы.
func ExpandUnit(ctx context.Context, manifestPath, unitPath string, opts Options) (*RunResult, error) {
	return ExpandUnits(ctx, manifestPath, []string{unitPath}, opts)
}

func observe(obs UnitObserver, ev UnitEvent) {
	if obs != nil {
		obs(ev)
	}
}
