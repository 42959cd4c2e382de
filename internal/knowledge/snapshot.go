package knowledge

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/lead-dialogue-engine/internal/jsonx"
)

// Snapshot is the live holder for the current knowledge-base Context. The
// catalog can be swapped while conversations are running; sessions pick up
// the new snapshot on their next turn without losing state.
//
// Product relevance lookups through the snapshot are memoized in a Ristretto
// cache; scoring is deterministic for a given snapshot, so entries are only
// dropped on swap.
type Snapshot struct {
	current atomic.Pointer[Context]
	cache   *ristretto.Cache[string, []byte]
	version atomic.Int64
	logger  *zap.Logger
}

// NewSnapshot wraps ctx in a hot-swappable holder.
func NewSnapshot(ctx *Context, logger *zap.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 10000,
		MaxCost:     1 << 20, // 1MB of cached match results
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create relevance cache: %w", err)
	}

	s := &Snapshot{cache: cache, logger: logger.Named("knowledge")}
	s.current.Store(ctx)
	s.version.Store(1)
	return s, nil
}

// Current returns the active knowledge context. The returned value must be
// treated as read-only.
func (s *Snapshot) Current() *Context {
	return s.current.Load()
}

// Swap replaces the active context and invalidates cached match results.
func (s *Snapshot) Swap(ctx *Context) {
	s.current.Store(ctx)
	v := s.version.Add(1)
	s.cache.Clear()
	s.logger.Info("knowledge base swapped",
		zap.Int64("version", v),
		zap.Int("products", len(ctx.Products)),
		zap.Int("faqs", len(ctx.FAQs)))
}

// Version returns the monotonically increasing snapshot version.
func (s *Snapshot) Version() int64 {
	return s.version.Load()
}

// RelevantProducts is FindRelevantProducts with per-snapshot memoization,
// used by the catalog search endpoint where the same short queries repeat.
func (s *Snapshot) RelevantProducts(query string, maxResults int) []ProductMatch {
	key := fmt.Sprintf("prod:%d:%d:%s", s.version.Load(), maxResults, query)
	if data, ok := s.cache.Get(key); ok {
		var cached []ProductMatch
		if err := jsonx.Unmarshal(data, &cached); err == nil {
			return cached
		}
	}

	matches := FindRelevantProducts(query, s.Current().Products, maxResults)
	if data, err := jsonx.Marshal(matches); err == nil {
		s.cache.Set(key, data, int64(len(data)))
	}
	return matches
}

// Close releases the relevance cache.
func (s *Snapshot) Close() {
	s.cache.Close()
}
