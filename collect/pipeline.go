package collect

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/easypatent/easypatent/core"
	"github.com/easypatent/easypatent/epo"
	"github.com/easypatent/easypatent/retry"
	"github.com/easypatent/easypatent/storage"
)

// DefaultWorkers is the default worker pool size.
const DefaultWorkers = 20

// Searcher is the slice of the OPS client the pipeline needs.
// *epo.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, keyword string, cursor int) ([]epo.PublicationRef, int, error)
	FetchAbstract(ctx context.Context, ref epo.PublicationRef) (*epo.Abstract, error)
}

// Pipeline collects patent abstracts for a set of keywords concurrently.
type Pipeline struct {
	searcher      Searcher
	repository    storage.PatentRepository
	pool          *ants.Pool
	persistPolicy retry.Policy
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithWorkers sets the worker pool size. Default is DefaultWorkers.
func WithWorkers(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithPersistRetry sets the retry policy wrapped around each repository
// upsert. Default is retry.DefaultPolicy().
func WithPersistRetry(policy retry.Policy) Option {
	return func(p *Pipeline) error {
		p.persistPolicy = policy
		return nil
	}
}

// NewPipeline creates a collection pipeline.
func NewPipeline(searcher Searcher, repository storage.PatentRepository, opts ...Option) (*Pipeline, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	pool, err := ants.NewPool(DefaultWorkers)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		searcher:      searcher,
		repository:    repository,
		pool:          pool,
		persistPolicy: retry.DefaultPolicy(),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run collects abstracts for every keyword and blocks until all keywords
// finish or ctx ends. Keywords run concurrently on the worker pool while
// a shared dedupe set guarantees each publication number is fetched and
// persisted at most once per run.
//
// A per-keyword failure is recorded in the report and does not stop other
// keywords. If ctx ends mid-run, in-flight keywords stop at the next
// checkpoint, unstarted keywords stay pending, and ctx's error is
// returned alongside the partial report.
func (p *Pipeline) Run(ctx context.Context, keywords []string) (*Report, error) {
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	report := newReport(keywords)
	claimed := NewDedupeSet()

	p.logger.Info("collection run starting", "keywords", len(keywords), "workers", p.pool.Cap())

	var wg sync.WaitGroup
	for i := range report.Results {
		if ctx.Err() != nil {
			break
		}

		result := &report.Results[i]
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			p.collectKeyword(ctx, claimed, result)
		})
		if err != nil {
			wg.Done()
			result.State = KeywordFailed
			result.Err = err
		}
	}
	wg.Wait()

	p.logger.Info("collection run finished", "summary", report.Summary())

	return report, ctx.Err()
}

// collectKeyword pages through search results for one keyword, persisting
// every newly claimed publication.
func (p *Pipeline) collectKeyword(ctx context.Context, claimed *DedupeSet, result *KeywordResult) {
	keyword := result.Keyword
	logger := p.logger.With("keyword", keyword)

	// A keyword picked up after cancellation never started; it stays
	// pending rather than counting as failed.
	if ctx.Err() != nil {
		return
	}
	result.State = KeywordInProgress

	cursor := 1
	for cursor > 0 {
		if ctx.Err() != nil {
			result.State = KeywordFailed
			result.Err = ctx.Err()
			return
		}

		refs, next, err := p.searcher.Search(ctx, keyword, cursor)
		if err != nil {
			logger.Error("search failed", "cursor", cursor, "err", err)
			result.State = KeywordFailed
			result.Err = err
			return
		}

		for _, ref := range refs {
			if ctx.Err() != nil {
				result.State = KeywordFailed
				result.Err = ctx.Err()
				return
			}
			p.collectRecord(ctx, keyword, ref, claimed, result)
		}

		cursor = next
	}

	result.State = KeywordCompleted
	logger.Info("keyword completed",
		"persisted", result.Persisted, "duplicates", result.Duplicates, "failed", len(result.FailedRecords))
}

func (p *Pipeline) collectRecord(ctx context.Context, keyword string, ref epo.PublicationRef, claimed *DedupeSet, result *KeywordResult) {
	if !claimed.TryClaim(ref.Number) {
		result.Duplicates++
		return
	}

	abstract, err := p.searcher.FetchAbstract(ctx, ref)
	if err != nil {
		category := FailurePermanent
		if epo.IsTransient(err) {
			category = FailureTransient
		}
		p.logger.Warn("abstract fetch failed", "keyword", keyword, "number", ref.Number, "category", category, "err", err)
		result.FailedRecords = append(result.FailedRecords, RecordFailure{
			Keyword:  keyword,
			Number:   ref.Number,
			Category: category,
			Err:      err,
		})
		return
	}

	record := &core.PatentRecord{
		Number:   abstract.Number,
		Title:    abstract.Title,
		Abstract: abstract.Abstract,
		Keywords: []string{keyword},
	}

	err = p.persistPolicy.Do(ctx, func() error {
		_, upsertErr := p.repository.Upsert(ctx, record)
		return upsertErr
	})
	if err != nil {
		p.logger.Error("persist failed", "keyword", keyword, "number", ref.Number, "err", err)
		result.FailedRecords = append(result.FailedRecords, RecordFailure{
			Keyword:  keyword,
			Number:   ref.Number,
			Category: FailurePersistence,
			Err:      err,
		})
		return
	}

	result.Persisted++
}

// Release releases the worker pool. The pipeline must not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
