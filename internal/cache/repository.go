package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one cached computation in cache.db.
type Entry struct {
	CacheKey       string
	UnitName       string
	Source         string
	TimeSlot       string
	Payload        []byte // msgpack-encoded result
	SourceFileTime int64  // unix, embedded timestamp of the newest export used
	CreatedAt      int64  // unix
	ExpiresAt      int64  // unix
}

// Key derives the cache key for a (unit, source, slot) triple.
func Key(unit, source, slot string) string {
	sum := sha256.Sum256([]byte(unit + "|" + source + "|" + slot))
	return hex.EncodeToString(sum[:])
}

// Repository provides cache persistence over cache.db.
// Writes are last-writer-wins upserts; concurrent computations of the same
// slot simply overwrite each other with equivalent data.
type Repository struct {
	cacheDB *sql.DB
	log     zerolog.Logger
}

// NewRepository creates a new cache repository.
func NewRepository(cacheDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		cacheDB: cacheDB,
		log:     log.With().Str("repo", "cache").Logger(),
	}
}

// Store upserts a cache entry with expiration = createdAt + window.
func (r *Repository) Store(e Entry, window time.Duration) error {
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	e.ExpiresAt = e.CreatedAt + int64(window.Seconds())

	query := `
		INSERT OR REPLACE INTO return_cache
			(cache_key, unit_name, source, time_slot, payload, source_file_time, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.cacheDB.Exec(query,
		e.CacheKey, e.UnitName, e.Source, e.TimeSlot,
		e.Payload, e.SourceFileTime, e.CreatedAt, e.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// GetIfFresh returns the entry only if it has not expired at now.
// Returns nil, nil when absent or expired; expired rows are left for the
// cleanup job.
func (r *Repository) GetIfFresh(key string, now time.Time) (*Entry, error) {
	query := `
		SELECT cache_key, unit_name, source, time_slot, payload, source_file_time, created_at, expires_at
		FROM return_cache
		WHERE cache_key = ? AND expires_at > ?
	`

	var e Entry
	err := r.cacheDB.QueryRow(query, key, now.Unix()).Scan(
		&e.CacheKey, &e.UnitName, &e.Source, &e.TimeSlot,
		&e.Payload, &e.SourceFileTime, &e.CreatedAt, &e.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return &e, nil
}

// Delete removes a single entry.
func (r *Repository) Delete(key string) error {
	if _, err := r.cacheDB.Exec("DELETE FROM return_cache WHERE cache_key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes entries whose expiry has passed.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.cacheDB.Exec("DELETE FROM return_cache WHERE expires_at < ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// DeleteOlderThan removes entries created before the cutoff regardless of
// their expiry. Used by the daily purge.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.cacheDB.Exec("DELETE FROM return_cache WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge old cache entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of cached entries.
func (r *Repository) Count() (int64, error) {
	var count int64
	if err := r.cacheDB.QueryRow("SELECT COUNT(*) FROM return_cache").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}
