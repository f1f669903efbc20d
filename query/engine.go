package query

import (
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/language"

	"github.com/vegasq/docsql/document"
)

// DefaultCacheSize is the number of compiled queries an Engine keeps
const DefaultCacheSize = 128

type options struct {
	locale    language.Tag
	clock     func() time.Time
	logger    log.Logger
	metrics   *Metrics
	cacheSize int
}

// Option configures an Engine
type Option func(*options)

// WithLocale sets the casing locale UPPER and LOWER use when no locale argument is given
func WithLocale(tag language.Tag) Option {
	return func(o *options) { o.locale = tag }
}

// WithClock sets the time source for NOW()
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithCacheSize sets the compiled query cache size. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// Engine parses and executes queries. It is safe for concurrent use as long
// as the documents passed to it are not mutated during execution.
type Engine struct {
	opts  options
	cache *lru.Cache[string, *Query]
}

// New creates an Engine
func New(opts ...Option) (*Engine, error) {
	o := options{
		locale:    language.Und,
		clock:     time.Now,
		logger:    log.NewNopLogger(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{opts: o}
	if o.cacheSize > 0 {
		cache, err := lru.New[string, *Query](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create query cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

// Parse parses sql, reusing a cached result for identical query text
func (e *Engine) Parse(sql string) (*Query, error) {
	if e.cache != nil {
		if q, ok := e.cache.Get(sql); ok {
			e.opts.metrics.cacheLookup(true)
			return q, nil
		}
		e.opts.metrics.cacheLookup(false)
	}

	q, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Add(sql, q)
	}
	return q, nil
}

// Query parses and executes sql against doc. The result is an array holding
// one object per result row.
func (e *Engine) Query(sql string, doc any) ([]any, error) {
	q, err := e.Parse(sql)
	if err != nil {
		e.opts.metrics.observeQuery(err, 0)
		return nil, err
	}
	return e.Execute(q, doc)
}

// Execute runs a parsed query against doc
func (e *Engine) Execute(q *Query, doc any) ([]any, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: nil query", ErrParse)
	}
	start := time.Now()
	ctx := &ExecutionContext{
		Locale:  e.opts.locale,
		Now:     e.opts.clock(),
		logger:  e.opts.logger,
		metrics: e.opts.metrics,
		queryID: uuid.NewString(),
	}
	level.Debug(ctx.logger).Log("msg", "executing query", "query_id", ctx.queryID, "stages", len(q.Stages))

	rows, err := ExecuteRows(q, doc, ctx)
	elapsed := time.Since(start)
	e.opts.metrics.observeQuery(err, elapsed)
	if err != nil {
		level.Warn(ctx.logger).Log("msg", "query failed", "query_id", ctx.queryID, "err", err)
		return nil, err
	}

	level.Debug(ctx.logger).Log("msg", "query complete", "query_id", ctx.queryID, "rows", len(rows), "duration", elapsed)
	return document.Unflatten(rows), nil
}

// Execute runs a parsed query with a one-off engine configuration
func Execute(q *Query, doc any, opts ...Option) ([]any, error) {
	e, err := New(append(opts, WithCacheSize(0))...)
	if err != nil {
		return nil, err
	}
	return e.Execute(q, doc)
}
