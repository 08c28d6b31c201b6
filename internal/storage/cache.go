package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
)

// CacheTier separates cache namespaces so each tool family can carry
// its own TTL and be invalidated independently.
type CacheTier string

const (
	// SearchCache holds code search results (short TTL, results churn)
	SearchCache CacheTier = "search"
	// RepoMapCache holds assembled repository maps keyed by commit SHA
	RepoMapCache CacheTier = "repomap"
	// LicenseCache holds license verdicts (long TTL, licenses rarely change)
	LicenseCache CacheTier = "license"
	// ContentCache holds fetched file contents keyed by repo and path
	ContentCache CacheTier = "content"
)

const (
	defaultHotEntries  = 256
	defaultHotEntryTTL = 5 * time.Minute
)

// CacheOptions tunes the in-memory layer. Zero values take defaults.
type CacheOptions struct {
	MaxHotEntries int
	HotEntryTTL   time.Duration
}

type hotEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Cache is a two-level TTL cache: a small in-memory LRU in front of the
// SQLite table, with zstd-compressed payloads at rest.
type Cache struct {
	db     *DB
	logger *slog.Logger
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	hot    *lru.Cache[string, hotEntry]
	hotTTL time.Duration
}

// NewCache creates a cache over an open database.
func NewCache(db *DB, logger *slog.Logger, opts CacheOptions) (*Cache, error) {
	if opts.MaxHotEntries <= 0 {
		opts.MaxHotEntries = defaultHotEntries
	}
	if opts.HotEntryTTL <= 0 {
		opts.HotEntryTTL = defaultHotEntryTTL
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	hot, err := lru.New[string, hotEntry](opts.MaxHotEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create hot cache: %w", err)
	}
	return &Cache{db: db, logger: logger, enc: enc, dec: dec, hot: hot, hotTTL: opts.HotEntryTTL}, nil
}

// hotExpiry caps in-memory residency so a long-TTL row cannot pin the
// hot cache for days.
func (c *Cache) hotExpiry(rowExpiry time.Time) time.Time {
	capped := time.Now().Add(c.hotTTL)
	if rowExpiry.Before(capped) {
		return rowExpiry
	}
	return capped
}

// Get retrieves a value. The second return is false on a miss or an
// expired entry; expired rows are deleted on the way out.
func (c *Cache) Get(tier CacheTier, key string) ([]byte, bool, error) {
	hotKey := string(tier) + "\x00" + key
	if entry, ok := c.hot.Get(hotKey); ok {
		if time.Now().Before(entry.expiresAt) {
			return entry.payload, true, nil
		}
		c.hot.Remove(hotKey)
	}

	var payload []byte
	var expiresAt string
	err := c.db.QueryRow(`
		SELECT payload, expires_at
		FROM tool_cache
		WHERE tier = ? AND key = ?
	`, string(tier), key).Scan(&payload, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	expiresAtTime, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, false, fmt.Errorf("invalid expires_at format: %w", err)
	}
	if time.Now().After(expiresAtTime) {
		c.db.Exec("DELETE FROM tool_cache WHERE tier = ? AND key = ?", string(tier), key)
		return nil, false, nil
	}

	decoded, err := c.dec.DecodeAll(payload, nil)
	if err != nil {
		// A corrupt payload is treated as a miss, not a failure.
		c.logger.Warn("Dropping undecodable cache entry", "tier", tier, "key", key, "error", err)
		c.db.Exec("DELETE FROM tool_cache WHERE tier = ? AND key = ?", string(tier), key)
		return nil, false, nil
	}

	c.hot.Add(hotKey, hotEntry{payload: decoded, expiresAt: c.hotExpiry(expiresAtTime)})
	return decoded, true, nil
}

// Set stores a value with the given TTL.
func (c *Cache) Set(tier CacheTier, key string, value []byte, ttl time.Duration) error {
	now := time.Now()
	expiresAt := now.Add(ttl)
	compressed := c.enc.EncodeAll(value, nil)

	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO tool_cache (tier, key, payload, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, string(tier), key, compressed, expiresAt.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}

	c.hot.Add(string(tier)+"\x00"+key, hotEntry{payload: value, expiresAt: c.hotExpiry(expiresAt)})
	return nil
}

// GetJSON retrieves and unmarshals a cached value into out.
func (c *Cache) GetJSON(tier CacheTier, key string, out interface{}) (bool, error) {
	data, ok, err := c.Get(tier, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return true, nil
}

// SetJSON marshals and stores a value with the given TTL.
func (c *Cache) SetJSON(tier CacheTier, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.Set(tier, key, data, ttl)
}

// Invalidate removes every entry in a tier.
func (c *Cache) Invalidate(tier CacheTier) error {
	if _, err := c.db.Exec("DELETE FROM tool_cache WHERE tier = ?", string(tier)); err != nil {
		return fmt.Errorf("failed to invalidate cache tier: %w", err)
	}
	c.hot.Purge()
	return nil
}

// InvalidateAll clears the whole cache.
func (c *Cache) InvalidateAll() error {
	if _, err := c.db.Exec("DELETE FROM tool_cache"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	c.hot.Purge()
	return nil
}

// CleanupExpired removes all expired rows. Called opportunistically at
// startup rather than on a timer.
func (c *Cache) CleanupExpired() (int64, error) {
	res, err := c.db.Exec("DELETE FROM tool_cache WHERE expires_at < ?", time.Now().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup cache: %w", err)
	}
	removed, _ := res.RowsAffected()
	if removed > 0 {
		c.logger.Debug("Cleaned up expired cache entries", "removed", removed)
	}
	return removed, nil
}

// Stats reports per-tier entry counts and stored (compressed) sizes.
func (c *Cache) Stats() (map[string]map[string]int64, error) {
	rows, err := c.db.Query(`
		SELECT tier, COUNT(*), COALESCE(SUM(LENGTH(payload)), 0)
		FROM tool_cache
		GROUP BY tier
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get cache stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]map[string]int64)
	for rows.Next() {
		var tier string
		var count, size int64
		if err := rows.Scan(&tier, &count, &size); err != nil {
			return nil, fmt.Errorf("failed to scan cache stats: %w", err)
		}
		stats[tier] = map[string]int64{"entries": count, "sizeBytes": size}
	}
	return stats, rows.Err()
}
