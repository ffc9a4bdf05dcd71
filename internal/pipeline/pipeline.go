// Package pipeline orchestrates extraction: primary backend first,
// validation and scoring on its output, fallback to the secondary
// backend when the primary fails, scores low or is not configured.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ledgerline/billparse/internal/backend"
	"github.com/ledgerline/billparse/internal/cache"
	"github.com/ledgerline/billparse/internal/model"
	"github.com/ledgerline/billparse/internal/normalize"
	"github.com/ledgerline/billparse/internal/score"
	"github.com/ledgerline/billparse/internal/validate"
)

// acceptThreshold is the confidence below which a primary extraction is
// discarded in favor of the fallback. It matches the requires-review
// cutoff on the stored record.
const acceptThreshold = 0.70

// Pipeline runs the two-tier extraction strategy.
type Pipeline struct {
	primary    backend.Backend // nil when the primary credential is absent
	secondary  backend.Backend
	normalizer *normalize.Normalizer
	validator  *validate.Validator
	scorer     *score.Scorer
	docCache   cache.Cache // nil disables caching
	cacheTTL   time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache enables result caching keyed by document bytes.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(p *Pipeline) {
		p.docCache = c
		p.cacheTTL = ttl
	}
}

// NewPipeline creates a pipeline. primary may be nil, in which case
// every document goes straight to the secondary backend. secondary must
// not be nil.
func NewPipeline(primary, secondary backend.Backend, opts ...Option) *Pipeline {
	p := &Pipeline{
		primary:    primary,
		secondary:  secondary,
		normalizer: normalize.NewNormalizer(),
		validator:  validate.NewValidator(),
		scorer:     score.NewScorer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of processing one document.
type Result struct {
	Bill *model.NormalizedBill `json:"bill"`
	// Method is the name of the backend whose output survived.
	Method string   `json:"method"`
	Issues []string `json:"issues"`
	// OK reports whether the surviving record passed validation.
	OK bool `json:"ok"`
}

// Process extracts, normalizes, validates and scores one document.
// The primary result is kept only when it validates cleanly at or
// above the confidence threshold; anything else falls back. Secondary
// failures are not recoverable and surface as errors.
func (p *Pipeline) Process(ctx context.Context, pdf []byte) (*Result, error) {
	if cached, ok := p.cachedResult(pdf); ok {
		zap.L().Info("cache hit", zap.String("method", cached.Method))
		return cached, nil
	}

	if p.primary != nil {
		res, err := p.tryPrimary(ctx, pdf)
		if err != nil {
			zap.L().Warn("primary extraction failed, falling back",
				zap.String("backend", p.primary.Name()),
				zap.Error(err))
		} else {
			p.storeResult(pdf, res)
			return res, nil
		}
	}

	zap.L().Info("extractor attempted", zap.String("backend", p.secondary.Name()))
	raw, err := p.secondary.Extract(ctx, pdf)
	if err != nil {
		return nil, eris.Wrapf(err, "%s extraction failed", p.secondary.Name())
	}

	res := p.finish(score.MethodSecondary, p.secondary.Name(), raw)
	p.storeResult(pdf, res)
	return res, nil
}

// tryPrimary runs the primary backend and applies the acceptance rule.
// A non-nil error always means the fallback runs.
func (p *Pipeline) tryPrimary(ctx context.Context, pdf []byte) (*Result, error) {
	zap.L().Info("extractor attempted", zap.String("backend", p.primary.Name()))

	raw, err := p.primary.Extract(ctx, pdf)
	if err != nil {
		return nil, err
	}

	res := p.finish(score.MethodPrimary, p.primary.Name(), raw)
	if !res.OK || res.Bill.ConfidenceScore < acceptThreshold {
		return nil, eris.Errorf("primary result rejected (ok=%v, confidence=%.2f, issues=%v)",
			res.OK, res.Bill.ConfidenceScore, res.Issues)
	}
	return res, nil
}

// finish normalizes, validates and scores a raw extraction. The final
// confidence is written onto both the record and the raw payload it
// carries.
func (p *Pipeline) finish(method, backendName string, raw *model.RawExtraction) *Result {
	bill := p.normalizer.Normalize(raw)
	ok, issues := p.validator.Validate(bill)
	conf := p.scorer.Score(method, bill, issues)

	bill.ConfidenceScore = conf
	if bill.RawExtractedData != nil {
		bill.RawExtractedData.Confidence = &conf
	}

	zap.L().Info("confidence score",
		zap.String("backend", backendName),
		zap.Float64("confidence", conf),
		zap.Strings("issues", issues))

	return &Result{
		Bill:   bill,
		Method: backendName,
		Issues: issues,
		OK:     ok,
	}
}

func (p *Pipeline) cachedResult(pdf []byte) (*Result, bool) {
	if p.docCache == nil {
		return nil, false
	}
	data, found := p.docCache.Get(cache.CacheKey(pdf))
	if !found {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (p *Pipeline) storeResult(pdf []byte, res *Result) {
	if p.docCache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := p.docCache.Set(cache.CacheKey(pdf), data, p.cacheTTL); err != nil {
		zap.L().Warn("cache write failed", zap.Error(err))
	}
}
