// Package transpile is the host pipeline: parse SQL with one dialect and
// render it with another.
//
//	tr, err := transpile.New(transpile.WithCacheSize(512))
//	out, err := tr.Transpile("SELECT DATE_ADD(d, 1) FROM t", spark.Spark, databricks.Databricks)
//	// out[0] == "SELECT DATEADD(DAY, 1, d) FROM t"
//
// Results are cached per (read dialect, write dialect, sql) in an LRU cache.
// A Transpiler is safe for concurrent use.
package transpile

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/format"
	"github.com/leapstack-labs/sqldialect/pkg/parser"
)

// DefaultCacheSize is the number of results kept when no size is given.
const DefaultCacheSize = 256

type cacheKey struct {
	read, write *dialect.Dialect
	sql         string
}

// cacheEntry keeps the warnings of a render so a cache hit reports them
// again.
type cacheEntry struct {
	statements []string
	warnings   []string
}

// Transpiler converts SQL between dialects.
type Transpiler struct {
	logger      *slog.Logger
	cacheSize   int
	cache       *lru.Cache[cacheKey, cacheEntry]
	concurrency int
	formatOpts  []format.Option
}

// Option configures a Transpiler.
type Option func(*Transpiler)

// WithLogger sets the logger for pipeline events and unsupported-construct
// warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transpiler) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithCacheSize sets the result cache size. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(t *Transpiler) {
		t.cacheSize = n
	}
}

// WithConcurrency limits how many inputs TranspileAll processes at once.
func WithConcurrency(n int) Option {
	return func(t *Transpiler) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// WithFormatOptions passes options to every render.
func WithFormatOptions(opts ...format.Option) Option {
	return func(t *Transpiler) {
		t.formatOpts = append(t.formatOpts, opts...)
	}
}

// New creates a Transpiler.
func New(opts ...Option) (*Transpiler, error) {
	t := &Transpiler{
		logger:      slog.New(slog.DiscardHandler),
		cacheSize:   DefaultCacheSize,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.cacheSize < 0 {
		return nil, fmt.Errorf("invalid cache size %d", t.cacheSize)
	}
	if t.cacheSize > 0 {
		cache, err := lru.New[cacheKey, cacheEntry](t.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		t.cache = cache
	}
	// The logger goes first so an explicit format.WithLogger still wins.
	t.formatOpts = append([]format.Option{format.WithLogger(t.logger)}, t.formatOpts...)
	return t, nil
}

// Transpile parses sql with read and renders every statement with write.
// Unsupported-construct warnings are logged on every call, cached or not.
func (t *Transpiler) Transpile(sql string, read, write *dialect.Dialect) ([]string, error) {
	if read == nil || write == nil {
		return nil, dialect.ErrDialectRequired
	}
	key := cacheKey{read: read, write: write, sql: sql}
	if t.cache != nil {
		if entry, ok := t.cache.Get(key); ok {
			t.logger.Debug("transpile cache hit", "read", read.Name, "write", write.Name)
			for _, w := range entry.warnings {
				t.logger.Warn("unsupported construct", "dialect", write.Name, "detail", w)
			}
			return slices.Clone(entry.statements), nil
		}
	}

	stmts, err := parser.Parse(sql, read)
	if err != nil {
		return nil, fmt.Errorf("parse as %s: %w", read.Name, err)
	}
	var warnings []string
	opts := append(slices.Clip(t.formatOpts), format.WithWarningHook(func(detail string) {
		warnings = append(warnings, detail)
	}))
	out, err := format.Statements(stmts, write, opts...)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("transpiled", "read", read.Name, "write", write.Name, "statements", len(out))

	if t.cache != nil {
		t.cache.Add(key, cacheEntry{statements: slices.Clone(out), warnings: warnings})
	}
	return out, nil
}

// TranspileNamed is Transpile with dialects looked up in the registry.
func (t *Transpiler) TranspileNamed(sql, read, write string) ([]string, error) {
	r, err := dialect.Lookup(read)
	if err != nil {
		return nil, fmt.Errorf("read dialect: %w", err)
	}
	w, err := dialect.Lookup(write)
	if err != nil {
		return nil, fmt.Errorf("write dialect: %w", err)
	}
	return t.Transpile(sql, r, w)
}

// CacheLen returns the number of cached results.
func (t *Transpiler) CacheLen() int {
	if t.cache == nil {
		return 0
	}
	return t.cache.Len()
}

// Input is one unit of work for TranspileAll.
type Input struct {
	Name  string // used in errors, e.g. a file path
	SQL   string
	Read  *dialect.Dialect
	Write *dialect.Dialect
}

// Output holds the statements rendered for one Input.
type Output struct {
	Name       string
	Statements []string
}

// TranspileAll transpiles inputs in parallel, at most the configured
// concurrency at a time. Outputs are in input order. The first failure
// cancels the remaining work and is returned with the input's name.
func (t *Transpiler) TranspileAll(ctx context.Context, inputs []Input) ([]Output, error) {
	out := make([]Output, len(inputs))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(t.concurrency)

	for i, in := range inputs {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			stmts, err := t.Transpile(in.SQL, in.Read, in.Write)
			if err != nil {
				return fmt.Errorf("%s: %w", in.Name, err)
			}
			out[i] = Output{Name: in.Name, Statements: stmts}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
