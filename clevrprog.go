package clevrprog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/clevrprog/internal/logging"
	"github.com/aretw0/clevrprog/pkg/ports"
	"github.com/aretw0/clevrprog/pkg/rewrite"
	"github.com/aretw0/clevrprog/pkg/sexpr"
)

// Pipeline converts expression lines: parse, reverse filter chains,
// optionally factor attributes, annotate types, serialize.
// A Pipeline is immutable after New and safe for concurrent use.
type Pipeline struct {
	types       rewrite.TypeSource
	annotator   *rewrite.Annotator
	reverser    *rewrite.Reverser
	factorer    *rewrite.Factorer
	factor      bool
	chainPred   rewrite.Predicate
	chainName   string
	observers   []ports.Observer
	cache       ports.ResultCache
	logger      *slog.Logger
	fingerprint string
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithAttributeFactoring enables the attribute factoring pass. The type
// source must then be keyed by the generic family names.
func WithAttributeFactoring(enabled bool) Option {
	return func(p *Pipeline) {
		p.factor = enabled
	}
}

// WithChainPredicate sets the predicate selecting filter chain links.
// name identifies the predicate in cache keys.
func WithChainPredicate(name string, pred rewrite.Predicate) Option {
	return func(p *Pipeline) {
		p.chainName = name
		p.chainPred = pred
	}
}

// WithFactorer replaces the default attribute factoring families.
func WithFactorer(f *rewrite.Factorer) Option {
	return func(p *Pipeline) {
		p.factorer = f
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithObserver registers an observer notified after every line.
func WithObserver(o ports.Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, o)
	}
}

// WithCache memoizes converted lines in c.
func WithCache(c ports.ResultCache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// New creates a Pipeline annotating with types (usually a *catalog.Catalog).
func New(types rewrite.TypeSource, opts ...Option) (*Pipeline, error) {
	if types == nil {
		return nil, errors.New("a type source is required")
	}

	p := &Pipeline{
		types:     types,
		chainName: "prefix:" + rewrite.DefaultChainPrefix,
		chainPred: rewrite.HasPrefix(rewrite.DefaultChainPrefix),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.chainPred == nil {
		return nil, errors.New("chain predicate must not be nil")
	}
	if p.factorer == nil {
		p.factorer = rewrite.NewFactorer(nil, nil)
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}

	p.annotator = rewrite.NewAnnotator(types)
	p.reverser = rewrite.NewReverser(p.chainPred)
	p.fingerprint = p.computeFingerprint()
	return p, nil
}

// FactorsAttributes reports whether attribute factoring is enabled.
func (p *Pipeline) FactorsAttributes() bool {
	return p.factor
}

// Transform parses and rewrites a line, returning the annotated tree.
func (p *Pipeline) Transform(line string) (*sexpr.Node, error) {
	tree, err := sexpr.Parse(line)
	if err != nil {
		return nil, err
	}
	tree, err = p.reverser.Reverse(tree)
	if err != nil {
		return nil, err
	}
	if p.factor {
		if err := p.factorer.Factor(tree); err != nil {
			return nil, err
		}
	}
	if err := p.annotator.Annotate(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Process converts a line into its annotated string form.
func (p *Pipeline) Process(line string) (string, error) {
	return p.ProcessContext(context.Background(), line)
}

// ProcessContext is Process with a context for the result cache.
// Cache failures are logged and never fail the line.
func (p *Pipeline) ProcessContext(ctx context.Context, line string) (string, error) {
	start := time.Now()
	line = strings.TrimSpace(line)

	var key string
	if p.cache != nil {
		key = p.CacheKey(line)
		if out, err := p.cache.Get(ctx, key); err == nil {
			p.observe(start, nil)
			return out, nil
		} else if !errors.Is(err, ports.ErrCacheMiss) {
			p.logger.Warn("Cache lookup failed", "err", err)
		}
	}

	tree, err := p.Transform(line)
	if err != nil {
		p.logger.Debug("Line rejected", "line", line, "err", err)
		p.observe(start, err)
		return "", err
	}
	out := sexpr.Serialize(tree)

	if p.cache != nil {
		if err := p.cache.Put(ctx, key, out); err != nil {
			p.logger.Warn("Cache store failed", "err", err)
		}
	}
	p.observe(start, nil)
	return out, nil
}

// CacheKey returns the cache key for line under this pipeline's configuration.
func (p *Pipeline) CacheKey(line string) string {
	sum := sha256.Sum256([]byte(p.fingerprint + "\n" + line))
	return hex.EncodeToString(sum[:])
}

func (p *Pipeline) observe(start time.Time, err error) {
	elapsed := time.Since(start)
	for _, o := range p.observers {
		o.ObserveLine(elapsed, err)
	}
}

// digester is implemented by type sources that can identify their contents.
type digester interface {
	Digest() string
}

func (p *Pipeline) computeFingerprint() string {
	types := "-"
	if d, ok := p.types.(digester); ok {
		types = d.Digest()
	}
	return fmt.Sprintf("v1|chain=%s|factor=%t|%s|types=%s", p.chainName, p.factor, p.factorer, types)
}
