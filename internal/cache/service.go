package cache

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/fundwatch/internal/market_hours"
	"github.com/aristath/fundwatch/internal/modules/returns"
)

// FreshnessChecker reports the newest export time available for a source.
// Implemented by the locator.
type FreshnessChecker interface {
	FreshestTime(source string) (time.Time, bool, error)
}

// ComputeFunc produces a fresh result when the cache cannot serve one.
type ComputeFunc func() (*returns.UnitReturn, error)

// Service is the read-through cache for unit return computations.
type Service struct {
	repo      *Repository
	freshness FreshnessChecker
	cal       *market_hours.Calendar
	clock     market_hours.Clock
	log       zerolog.Logger
}

// NewService creates a new cache service.
func NewService(repo *Repository, freshness FreshnessChecker, cal *market_hours.Calendar, clock market_hours.Clock, log zerolog.Logger) *Service {
	if clock == nil {
		clock = market_hours.SystemClock{}
	}
	return &Service{
		repo:      repo,
		freshness: freshness,
		cal:       cal,
		clock:     clock,
		log:       log.With().Str("service", "cache").Logger(),
	}
}

// GetOrCompute serves the cached result for (unit, source) in the current
// time slot, or computes and caches a fresh one.
//
// A cached entry is served only when both hold:
//   - its expiry has not passed
//   - no export newer than the one it was built from has appeared
//
// A failed computation is returned as an error and never cached, so the
// next call retries. The bool reports whether the cache served the result.
func (s *Service) GetOrCompute(unit, source string, compute ComputeFunc) (*returns.UnitReturn, bool, error) {
	now := s.clock.Now()
	slot, window := Slot(now, s.cal)
	key := Key(unit, source, slot)

	entry, err := s.repo.GetIfFresh(key, now)
	if err != nil {
		// A broken cache read degrades to a recompute
		s.log.Warn().Err(err).Str("unit", unit).Msg("Cache read failed, recomputing")
		entry = nil
	}

	if entry != nil && s.isCurrent(entry, source) {
		var cached returns.UnitReturn
		if err := msgpack.Unmarshal(entry.Payload, &cached); err != nil {
			s.log.Warn().Err(err).Str("unit", unit).Msg("Cache payload undecodable, recomputing")
		} else {
			s.log.Debug().Str("unit", unit).Str("slot", slot).Msg("Cache hit")
			return &cached, true, nil
		}
	}

	result, err := compute()
	if err != nil {
		return nil, false, err
	}

	payload, err := msgpack.Marshal(result)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode cache payload: %w", err)
	}

	storeErr := s.repo.Store(Entry{
		CacheKey:       key,
		UnitName:       unit,
		Source:         source,
		TimeSlot:       slot,
		Payload:        payload,
		SourceFileTime: result.SourceFileTime.Unix(),
		CreatedAt:      now.Unix(),
	}, window)
	if storeErr != nil {
		// The result is still good; only caching failed
		s.log.Warn().Err(storeErr).Str("unit", unit).Msg("Failed to store cache entry")
	}

	return result, false, nil
}

// isCurrent checks that no newer export has appeared since the entry was
// computed. When the locator cannot tell (source vanished), the entry is
// served as-is.
func (s *Service) isCurrent(entry *Entry, source string) bool {
	freshest, found, err := s.freshness.FreshestTime(source)
	if err != nil {
		s.log.Warn().Err(err).Str("source", source).Msg("Freshness check failed, serving cached entry")
		return true
	}
	if !found {
		return true
	}
	return freshest.Unix() <= entry.SourceFileTime
}

// PurgeStale removes expired entries and entries older than one day.
// Called at startup and by the daily cleanup job.
func (s *Service) PurgeStale() (int64, error) {
	now := s.clock.Now()

	expired, err := s.repo.DeleteExpired(now)
	if err != nil {
		return 0, err
	}

	old, err := s.repo.DeleteOlderThan(now.Add(-24 * time.Hour))
	if err != nil {
		return expired, err
	}

	return expired + old, nil
}
