// Package cache implements the two-tier LLM response cache (§2.4, §4.3
// caching, §5): an in-memory LRU in front of a SQLite-backed disk tier,
// keyed by (prompt_type, prompt_version, text_fingerprint). The SQLite
// wiring follows the teacher's internal/storage/sqlite.go write-through
// cache pattern; the in-memory tier reuses the teacher's generic
// pkg/cache.LRU rather than re-implementing LRU eviction.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	pkgcache "smj-graphpipeline/pkg/cache"
)

// Key identifies one cached LLM response.
type Key struct {
	PromptType    string
	PromptVersion string
	TextFingerprint string
}

func (k Key) string() string {
	return k.PromptType + "\x1f" + k.PromptVersion + "\x1f" + k.TextFingerprint
}

// Fingerprint hashes the first 2000 characters of the input text, matching
// §4.3's "text_fingerprint = hash(first 2000 chars of input_text)".
func Fingerprint(text string) string {
	if len(text) > 2000 {
		text = text[:2000]
	}
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ResponseCache is the two-tier cache: an in-memory LRU checked first, a
// SQLite table checked on miss.
type ResponseCache struct {
	mem *pkgcache.LRU[string, string]
	db  *sql.DB
	ttl time.Duration

	stmtGet    *sql.Stmt
	stmtUpsert *sql.Stmt
}

// Open creates (or attaches to) a SQLite-backed response cache at dbPath.
// An empty dbPath disables the disk tier; only the in-memory LRU is used,
// which is useful for tests and for `--only-stage` dry runs.
func Open(dbPath string, memEntries int, ttl time.Duration) (*ResponseCache, error) {
	rc := &ResponseCache{
		mem: pkgcache.New[string, string](&pkgcache.Config{MaxEntries: memEntries, TTL: ttl}),
		ttl: ttl,
	}

	if dbPath == "" {
		return rc, nil
	}

	db, err := sql.Open("sqlite", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			cache_key  TEXT PRIMARY KEY,
			response   TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: failed to create schema: %w", err)
	}

	rc.db = db
	rc.stmtGet, err = db.Prepare(`SELECT response, created_at FROM cache_entries WHERE cache_key = ?`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: failed to prepare get: %w", err)
	}
	rc.stmtUpsert, err = db.Prepare(`
		INSERT INTO cache_entries (cache_key, response, created_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET response = excluded.response, created_at = excluded.created_at
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: failed to prepare upsert: %w", err)
	}

	return rc, nil
}

// Get looks up a cached response, checking the in-memory tier first
// (§5 "Response Cache ... reads check memory first"). An entry older than
// the configured TTL is treated as a miss (§4.3 "entry not older than 30
// days").
func (rc *ResponseCache) Get(key Key) (string, bool) {
	k := key.string()

	if v, ok := rc.mem.Get(k); ok {
		return v, true
	}

	if rc.db == nil {
		return "", false
	}

	var response string
	var createdAt int64
	err := rc.stmtGet.QueryRow(k).Scan(&response, &createdAt)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.Printf("[WARN] cache: disk lookup failed for key %q: %v", k, err)
		return "", false
	}

	if rc.ttl > 0 && time.Since(time.Unix(createdAt, 0)) > rc.ttl {
		return "", false
	}

	rc.mem.Set(k, response)
	return response, true
}

// Set writes a response to both tiers.
func (rc *ResponseCache) Set(key Key, response string) {
	k := key.string()
	rc.mem.Set(k, response)

	if rc.db == nil {
		return
	}
	if _, err := rc.stmtUpsert.Exec(k, response, time.Now().Unix()); err != nil {
		log.Printf("[WARN] cache: disk write failed for key %q: %v", k, err)
	}
}

// Close releases the underlying SQLite connection, if any.
func (rc *ResponseCache) Close() error {
	if rc.db == nil {
		return nil
	}
	return rc.db.Close()
}
