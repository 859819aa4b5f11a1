package cache

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE return_cache (
    cache_key TEXT PRIMARY KEY,
    unit_name TEXT NOT NULL,
    source TEXT NOT NULL,
    time_slot TEXT NOT NULL,
    payload BLOB NOT NULL,
    source_file_time INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);
`

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return NewRepository(db, zerolog.Nop())
}

func testEntry(key string, created time.Time) Entry {
	return Entry{
		CacheKey:       key,
		UnitName:       "成长一号",
		Source:         "live",
		TimeSlot:       "20250829-1045",
		Payload:        []byte{0x01},
		SourceFileTime: created.Unix(),
		CreatedAt:      created.Unix(),
	}
}

func TestKeyDeterministic(t *testing.T) {
	k1 := Key("成长一号", "live", "20250829-1045")
	k2 := Key("成长一号", "live", "20250829-1045")
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64)

	// Any component change yields a different key
	assert.NotEqual(t, k1, Key("成长一号", "sim", "20250829-1045"))
	assert.NotEqual(t, k1, Key("成长一号", "live", "20250829-1100"))
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	require.NoError(t, repo.Store(testEntry("k1", now), 15*time.Minute))

	entry, err := repo.GetIfFresh("k1", now)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "成长一号", entry.UnitName)
	assert.Equal(t, now.Unix()+900, entry.ExpiresAt)

	// Past the window the entry is not served
	entry, err = repo.GetIfFresh("k1", now.Add(16*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, entry)

	// Unknown key is nil, nil
	entry, err = repo.GetIfFresh("missing", now)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestStoreLastWriterWins(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	e := testEntry("k1", now)
	require.NoError(t, repo.Store(e, 15*time.Minute))

	e.Payload = []byte{0x02}
	require.NoError(t, repo.Store(e, 15*time.Minute))

	entry, err := repo.GetIfFresh("k1", now)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, []byte{0x02}, entry.Payload)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDeleteExpired(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	require.NoError(t, repo.Store(testEntry("fresh", now), time.Hour))
	require.NoError(t, repo.Store(testEntry("stale", now.Add(-2*time.Hour)), 15*time.Minute))

	deleted, err := repo.DeleteExpired(now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	entry, err := repo.GetIfFresh("fresh", now)
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestDeleteOlderThan(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	// Old entry with a long window: expiry alone would keep it
	require.NoError(t, repo.Store(testEntry("old", now.Add(-26*time.Hour)), 48*time.Hour))
	require.NoError(t, repo.Store(testEntry("recent", now), time.Hour))

	deleted, err := repo.DeleteOlderThan(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
