package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/concesa/salesagent/internal/providers/embedding"
)

// EmbedPool fans batches of texts out across concurrent embedding calls.
// Each batch is retried with exponential backoff before the whole run fails.
type EmbedPool struct {
	Embedder   embedding.Provider
	NumWorkers int
	BatchSize  int
	Retries    int
	Logger     *logrus.Logger
}

func (p *EmbedPool) defaults() {
	if p.NumWorkers <= 0 {
		p.NumWorkers = 4
	}
	if p.BatchSize <= 0 {
		p.BatchSize = 64
	}
	if p.Retries <= 0 {
		p.Retries = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
}

// EmbedAll returns one vector per text, in input order.
func (p *EmbedPool) EmbedAll(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if p.Embedder == nil {
		return nil, errors.New("EmbedPool missing dependency: Embedder must be set")
	}
	p.defaults()
	if len(texts) == 0 {
		return nil, nil
	}

	type job struct {
		start, end int
	}
	jobs := make(chan job)
	out := make([][]float32, len(texts))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		errMu.Unlock()
	}

	for i := 0; i < p.NumWorkers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := range jobs {
				vecs, err := p.embedBatch(ctx, model, texts[j.start:j.end])
				if err != nil {
					p.Logger.WithFields(logrus.Fields{
						"worker": worker,
						"start":  j.start,
						"end":    j.end,
					}).WithError(err).Error("embedding batch failed")
					fail(err)
					return
				}
				copy(out[j.start:j.end], vecs)
			}
		}(i)
	}

feed:
	for start := 0; start < len(texts); start += p.BatchSize {
		end := start + p.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		select {
		case jobs <- job{start: start, end: end}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	errMu.Lock()
	defer errMu.Unlock()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *EmbedPool) embedBatch(ctx context.Context, model string, batch []string) ([][]float32, error) {
	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= p.Retries; attempt++ {
		vecs, err := p.Embedder.Embed(ctx, model, batch)
		if err == nil {
			if len(vecs) != len(batch) {
				return nil, errors.New("embedder returned wrong vector count")
			}
			return vecs, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, err
		}
		if attempt < p.Retries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}
