package ops

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/logging"
	"github.com/hpungsan/flow/internal/nlp"
)

// cacheKey includes the day so relative dates never outlive midnight.
type cacheKey struct {
	input string
	day   string
}

// Parser is the configured nlp.Parser shared by every transport, with a
// small cache of recent results for clients that re-parse on each keystroke.
type Parser struct {
	nlp   *nlp.Parser
	cache *lru.Cache[cacheKey, nlp.ParsedTask] // nil when caching is off

	minConfidence float64
	autoApply     float64
}

// NewParser builds a Parser from cfg. Extra options are applied after the
// configured time zone, so tests can pin the clock or the zone.
func NewParser(cfg *config.Config, opts ...nlp.Option) (*Parser, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	p := &Parser{
		nlp:           nlp.New(append([]nlp.Option{nlp.WithLocation(loc)}, opts...)...),
		minConfidence: cfg.MinConfidence,
		autoApply:     cfg.AutoApplyConfidence,
	}
	if cfg.ParseCacheSize > 0 {
		cache, err := lru.New[cacheKey, nlp.ParsedTask](cfg.ParseCacheSize)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		p.cache = cache
	}
	return p, nil
}

// Today returns midnight of the current day in the configured zone.
func (p *Parser) Today() time.Time {
	return p.nlp.Today()
}

// Location returns the configured zone.
func (p *Parser) Location() *time.Location {
	return p.nlp.Location()
}

// Parse parses input relative to today. Callers own the returned value.
func (p *Parser) Parse(ctx context.Context, input string) nlp.ParsedTask {
	today := p.nlp.Today()
	if p.cache == nil {
		return p.nlp.ParseOn(input, today)
	}

	key := cacheKey{input: input, day: today.Format(time.DateOnly)}
	if cached, ok := p.cache.Get(key); ok {
		logging.FromContext(ctx).Debug("parse cache hit", "input", input)
		return cached.Clone()
	}

	parsed := p.nlp.ParseOn(input, today)
	p.cache.Add(key, parsed.Clone())
	return parsed
}

// CacheLen reports how many parses are cached.
func (p *Parser) CacheLen() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}
