// Package persist stores Medley's durable state in SQLite.
//
// Three things survive restarts: the feed snapshot (items, pagination,
// trending), the favorites collection, and the raw preferences document.
// The draft order and transient loading/error flags are never written.
package persist

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mholloway/medley/internal/feed"
	"github.com/mholloway/medley/internal/feedstore"
	"github.com/mholloway/medley/internal/logging"
)

// schemaVersion marks the current on-disk shape. Older databases load with
// initial-state defaults for whatever they lack; the version only moves
// forward.
const schemaVersion = 1

// Store handles persistence of feed state
type Store struct {
	db *sql.DB
}

// Open creates a new SQLite store. Use ":memory:" for tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		logging.Error("Failed to open database", "path", dbPath, "error", err)
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		logging.Warn("Failed to enable WAL", "error", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		logging.Error("Failed to migrate database", "error", err)
		db.Close()
		return nil, err
	}

	logging.Info("Database initialized", "path", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS items (
		collection TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		image_url TEXT,
		source TEXT,
		category TEXT,
		published_at DATETIME,
		url TEXT,
		read_time INTEGER DEFAULT 0,
		rating REAL DEFAULT 0,
		genre TEXT,
		artist TEXT,
		album TEXT,
		duration INTEGER DEFAULT 0,
		author TEXT,
		platform TEXT,
		likes INTEGER DEFAULT 0,
		hashtags TEXT,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_items_position ON items(collection, position);

	CREATE TABLE IF NOT EXISTS pagination (
		type TEXT PRIMARY KEY,
		current_page INTEGER NOT NULL DEFAULT 1,
		has_more INTEGER NOT NULL DEFAULT 1,
		total_loaded INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
		WHERE CAST(meta.value AS INTEGER) < CAST(excluded.value AS INTEGER)
	`, strconv.Itoa(schemaVersion))
	return err
}

// collection names inside the items table.
const (
	collectionFeed      = "feed"
	collectionTrending  = "trending"
	collectionFavorites = "favorites"
)

// SaveSnapshot replaces the stored feed snapshot.
func (s *Store) SaveSnapshot(snap feedstore.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveCollection(tx, collectionFeed, snap.Items); err != nil {
		return err
	}
	if err := saveCollection(tx, collectionTrending, snap.TrendingItems); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM pagination"); err != nil {
		return err
	}
	for t, p := range snap.Pages {
		hasMore := 0
		if p.HasMore {
			hasMore = 1
		}
		_, err := tx.Exec(`
			INSERT INTO pagination (type, current_page, has_more, total_loaded)
			VALUES (?, ?, ?, ?)
		`, string(t), p.CurrentPage, hasMore, p.TotalLoaded)
		if err != nil {
			return err
		}
	}

	metaBools := map[string]bool{
		"has_initial_data": snap.HasInitialData,
		"has_custom_order": snap.HasCustomOrder,
	}
	for key, val := range metaBools {
		if err := setMeta(tx, key, strconv.FormatBool(val)); err != nil {
			return err
		}
	}
	if err := setMeta(tx, "last_updated", snap.LastUpdated.Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if err := setMeta(tx, "trending_synced", snap.TrendingSynced.Format(time.RFC3339Nano)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.Debug("Feed snapshot saved", "items", len(snap.Items), "trending", len(snap.TrendingItems))
	return nil
}

// LoadSnapshot reads the stored feed snapshot. A fresh or partially
// populated database yields a snapshot with zero values; feedstore.Restore
// fills those with initial-state defaults.
func (s *Store) LoadSnapshot() (feedstore.Snapshot, error) {
	var snap feedstore.Snapshot

	items, err := loadCollection(s.db, collectionFeed)
	if err != nil {
		return snap, err
	}
	snap.Items = items

	trending, err := loadCollection(s.db, collectionTrending)
	if err != nil {
		return snap, err
	}
	snap.TrendingItems = trending

	snap.Pages = make(map[feed.Type]feedstore.PageState)
	rows, err := s.db.Query("SELECT type, current_page, has_more, total_loaded FROM pagination")
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ     string
			page    feedstore.PageState
			hasMore int
		)
		if err := rows.Scan(&typ, &page.CurrentPage, &hasMore, &page.TotalLoaded); err != nil {
			continue
		}
		page.HasMore = hasMore != 0
		snap.Pages[feed.Type(typ)] = page
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	snap.HasInitialData = getMetaBool(s.db, "has_initial_data")
	snap.HasCustomOrder = getMetaBool(s.db, "has_custom_order")
	snap.LastUpdated = getMetaTime(s.db, "last_updated")
	snap.TrendingSynced = getMetaTime(s.db, "trending_synced")

	logging.Debug("Feed snapshot loaded", "items", len(snap.Items), "trending", len(snap.TrendingItems))
	return snap, nil
}

// SaveFavorites replaces the stored favorites, preserving order.
func (s *Store) SaveFavorites(items []feed.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveCollection(tx, collectionFavorites, items); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadFavorites reads the stored favorites in saved order.
func (s *Store) LoadFavorites() ([]feed.Item, error) {
	return loadCollection(s.db, collectionFavorites)
}

// SavePreferences stores the raw preferences document.
func (s *Store) SavePreferences(data []byte) error {
	if !json.Valid(data) {
		return errInvalidPreferences
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := setMeta(tx, "preferences", string(data)); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadPreferences returns the stored preferences document, or nil when none
// has been saved.
func (s *Store) LoadPreferences() ([]byte, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'preferences'").Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// SchemaVersion returns the stored schema version, 0 when absent.
func (s *Store) SchemaVersion() int {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&value)
	if err != nil {
		return 0
	}
	v, _ := strconv.Atoi(value)
	return v
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

var errInvalidPreferences = errors.New("preferences document is not valid JSON")

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func setMeta(e execer, key, value string) error {
	_, err := e.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func getMetaBool(q querier, key string) bool {
	var value string
	if err := q.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value); err != nil {
		return false
	}
	b, _ := strconv.ParseBool(value)
	return b
}

func getMetaTime(q querier, key string) time.Time {
	var value string
	if err := q.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value); err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// saveCollection rewrites one ordered item collection inside an open tx.
// A row that fails to insert is skipped, not fatal to the batch.
func saveCollection(tx *sql.Tx, collection string, items []feed.Item) error {
	if _, err := tx.Exec("DELETE FROM items WHERE collection = ?", collection); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO items (
			collection, position, id, type, title, description, image_url,
			source, category, published_at, url, read_time, rating, genre,
			artist, album, duration, author, platform, likes, hashtags
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range items {
		hashtags := ""
		if len(item.Hashtags) > 0 {
			encoded, err := json.Marshal(item.Hashtags)
			if err == nil {
				hashtags = string(encoded)
			}
		}
		_, err := stmt.Exec(
			collection, i,
			item.ID, string(item.Type), item.Title, item.Description,
			item.ImageURL, item.Source, item.Category,
			item.PublishedAt.Format(time.RFC3339Nano), item.URL,
			item.ReadTime, item.Rating, item.Genre,
			item.Artist, item.Album, item.Duration,
			item.Author, item.Platform, item.Likes, hashtags,
		)
		if err != nil {
			logging.Warn("Failed to save item", "collection", collection, "id", item.ID, "error", err)
		}
	}
	return nil
}

// loadCollection reads one ordered item collection. Rows that fail to scan
// are skipped.
func loadCollection(q querier, collection string) ([]feed.Item, error) {
	rows, err := q.Query(`
		SELECT id, type, title, description, image_url, source, category,
			published_at, url, read_time, rating, genre, artist, album,
			duration, author, platform, likes, hashtags
		FROM items
		WHERE collection = ?
		ORDER BY position
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []feed.Item
	for rows.Next() {
		var (
			item        feed.Item
			typ         string
			publishedAt string
			hashtags    sql.NullString
		)
		err := rows.Scan(
			&item.ID, &typ, &item.Title, &item.Description,
			&item.ImageURL, &item.Source, &item.Category,
			&publishedAt, &item.URL, &item.ReadTime, &item.Rating,
			&item.Genre, &item.Artist, &item.Album, &item.Duration,
			&item.Author, &item.Platform, &item.Likes, &hashtags,
		)
		if err != nil {
			continue
		}
		item.Type = feed.Type(typ)
		if ts, err := time.Parse(time.RFC3339Nano, publishedAt); err == nil {
			item.PublishedAt = ts
		}
		if hashtags.Valid && hashtags.String != "" {
			_ = json.Unmarshal([]byte(hashtags.String), &item.Hashtags)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
