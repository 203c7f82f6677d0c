// FILE: pkg/vector/pooled.go
// PURPOSE: Bounds concurrent searches against the underlying index

package vector

import "context"

type searchTask struct {
	ctx       context.Context
	embedding []float32
	limit     int
	filter    Filter
	result    chan searchResult
}

type searchResult struct {
	matches []Match
	err     error
}

// Pooled funnels Search calls through a fixed worker pool so a burst of
// concurrent workflows cannot exhaust database connections. Upsert passes
// straight through.
type Pooled struct {
	inner Index
	tasks chan searchTask
}

func NewPooled(inner Index, workers int) *Pooled {
	if workers <= 0 {
		workers = 4
	}
	p := &Pooled{
		inner: inner,
		tasks: make(chan searchTask),
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pooled) worker() {
	for task := range p.tasks {
		matches, err := p.inner.Search(task.ctx, task.embedding, task.limit, task.filter)
		task.result <- searchResult{matches: matches, err: err}
	}
}

func (p *Pooled) SupportsNativeFilter() bool {
	return p.inner.SupportsNativeFilter()
}

func (p *Pooled) Upsert(ctx context.Context, docs []Document) error {
	return p.inner.Upsert(ctx, docs)
}

func (p *Pooled) Search(ctx context.Context, embedding []float32, limit int, filter Filter) ([]Match, error) {
	task := searchTask{
		ctx:       ctx,
		embedding: embedding,
		limit:     limit,
		filter:    filter,
		result:    make(chan searchResult, 1),
	}

	select {
	case p.tasks <- task:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-task.result:
		return res.matches, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
