// Package segments resolves per-dimension segment breakdowns for an entity,
// preferring observed data and falling back to a deterministic synthetic
// generator.
package segments

import (
	"context"
	"errors"

	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/models"
	"go.uber.org/zap"
)

// Source says where a dimension's records came from.
type Source string

const (
	SourceReal      Source = "real"
	SourceSynthetic Source = "synthetic"
)

// DimensionSegments is the resolved breakdown of one dimension.
type DimensionSegments struct {
	Dimension models.Dimension       `json:"dimension"`
	Source    Source                 `json:"source"`
	Records   []models.SegmentRecord `json:"records"`
}

// Resolution is the full set of breakdowns for one entity on one platform.
type Resolution struct {
	EntityID   string              `json:"entity_id"`
	Platform   models.Platform     `json:"platform"`
	Dimensions []DimensionSegments `json:"dimensions"`
}

// Get returns the breakdown of a dimension.
func (r *Resolution) Get(d models.Dimension) (DimensionSegments, bool) {
	for _, ds := range r.Dimensions {
		if ds.Dimension == d {
			return ds, true
		}
	}
	return DimensionSegments{}, false
}

// ErrUnsupportedPlatform is returned for platforms without segment tables.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// ResolveDimension picks the observed records of d when there are any and
// synthesizes them otherwise.
func ResolveDimension(m models.EntityMetrics, p models.Platform, real models.RealSegmentData, d models.Dimension) DimensionSegments {
	if observed := real.For(d); len(observed) > 0 {
		return DimensionSegments{Dimension: d, Source: SourceReal, Records: Normalize(observed)}
	}
	return DimensionSegments{Dimension: d, Source: SourceSynthetic, Records: Synthesize(m, p, d)}
}

// Resolve computes every dimension the platform exposes without caching.
func Resolve(m models.EntityMetrics, p models.Platform, real models.RealSegmentData) (*Resolution, error) {
	dims := DimensionsFor(p)
	if len(dims) == 0 {
		return nil, ErrUnsupportedPlatform
	}
	res := &Resolution{EntityID: m.ID, Platform: p, Dimensions: make([]DimensionSegments, 0, len(dims))}
	for _, d := range dims {
		res.Dimensions = append(res.Dimensions, ResolveDimension(m, p, real, d))
	}
	return res, nil
}

// Reconciler resolves breakdowns and caches the synthetic part per entity
// and platform.
type Reconciler struct {
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewReconciler creates a reconciler. cache and m may be nil.
func NewReconciler(cache Cache, m *metrics.Metrics, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{cache: cache, metrics: m, logger: logger}
}

// Resolve returns the breakdown of every dimension the platform exposes.
// Cache failures are logged and the synthetic set is recomputed.
func (r *Reconciler) Resolve(ctx context.Context, m models.EntityMetrics, p models.Platform, real models.RealSegmentData) (*Resolution, error) {
	dims := DimensionsFor(p)
	if len(dims) == 0 {
		return nil, ErrUnsupportedPlatform
	}

	synthetic := r.synthetic(ctx, m, p)

	res := &Resolution{EntityID: m.ID, Platform: p, Dimensions: make([]DimensionSegments, 0, len(dims))}
	for _, d := range dims {
		// Cached slices are shared between callers.
		ds := DimensionSegments{Dimension: d, Source: SourceSynthetic, Records: append([]models.SegmentRecord(nil), synthetic[d]...)}
		if observed := real.For(d); len(observed) > 0 {
			ds = DimensionSegments{Dimension: d, Source: SourceReal, Records: Normalize(observed)}
		}
		if r.metrics != nil {
			r.metrics.RecordSegmentResolution(string(p), string(ds.Source))
		}
		res.Dimensions = append(res.Dimensions, ds)
	}
	return res, nil
}

func (r *Reconciler) synthetic(ctx context.Context, m models.EntityMetrics, p models.Platform) map[models.Dimension][]models.SegmentRecord {
	if r.cache == nil || m.ID == "" {
		return SynthesizeAll(m, p)
	}

	key := CacheKey(m.ID, p)
	fp := Fingerprint(m)

	entry, err := r.cache.Get(ctx, key)
	switch {
	case err != nil:
		r.logger.Warn("segment cache read failed", zap.String("key", key), zap.Error(err))
		r.recordLookup("error")
	case entry == nil:
		r.recordLookup("miss")
	case entry.Fingerprint != fp:
		r.recordLookup("stale")
	default:
		r.recordLookup("hit")
		return entry.Segments
	}

	segs := SynthesizeAll(m, p)
	if err := r.cache.Set(ctx, key, &CacheEntry{Fingerprint: fp, Segments: segs}); err != nil {
		r.logger.Warn("segment cache write failed", zap.String("key", key), zap.Error(err))
	}
	return segs
}

func (r *Reconciler) recordLookup(result string) {
	if r.metrics != nil {
		r.metrics.RecordCacheLookup(result)
	}
}
