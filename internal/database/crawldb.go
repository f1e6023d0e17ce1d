package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/searchcrawl/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "crawler.db"

// CrawlDB is the durable store for pages and media assets.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so that queries can read while
	// the crawl writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the given directory.
// Any failure here means the store is unavailable and must be surfaced.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (use CreateIfNotExists option to create)", ErrStoreNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; one connection also serializes readers,
	// which keeps "INSERT OR IGNORE then read" sequences consistent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		content TEXT NOT NULL DEFAULT '',
		depth INTEGER NOT NULL,
		last_visited TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		image_url TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		content_hash TEXT NOT NULL DEFAULT '',
		exif TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_images_url ON images(url);

	CREATE TABLE IF NOT EXISTS videos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		video_url TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		content_hash TEXT NOT NULL DEFAULT '',
		exif TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_videos_url ON videos(url);
	`

	_, err := cdb.db.ExecContext(ctx, schema)
	return err
}

// SavePage inserts or replaces the record for page.URL.
func (cdb *CrawlDB) SavePage(ctx context.Context, page *model.Page) error {
	query := `
	INSERT OR REPLACE INTO pages (url, content, depth, last_visited, language)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := cdb.db.ExecContext(ctx, query,
		page.URL,
		page.Text,
		page.Depth,
		model.FormatTimestamp(page.LastVisited),
		page.Language,
	)
	if err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	return nil
}

// GetPage retrieves a page by URL. It returns nil, nil when no record exists.
func (cdb *CrawlDB) GetPage(ctx context.Context, url string) (*model.Page, error) {
	query := `SELECT url, content, depth, last_visited, language FROM pages WHERE url = ?`

	var page model.Page
	var lastVisited string
	err := cdb.db.QueryRowContext(ctx, query, url).Scan(
		&page.URL,
		&page.Text,
		&page.Depth,
		&lastVisited,
		&page.Language,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	page.LastVisited = parseTimestamp(lastVisited)
	return &page, nil
}

// ListPages returns every page in insertion (rowid) order.
func (cdb *CrawlDB) ListPages(ctx context.Context) ([]model.Page, error) {
	query := `SELECT url, content, depth, last_visited, language FROM pages ORDER BY rowid`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		var page model.Page
		var lastVisited string
		if err := rows.Scan(&page.URL, &page.Text, &page.Depth, &lastVisited, &page.Language); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		page.LastVisited = parseTimestamp(lastVisited)
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

// PageURLs returns the URL of every stored page.
// The crawler seeds its visited set from this list.
func (cdb *CrawlDB) PageURLs(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT url FROM pages ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list page urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan page url: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// assetTable maps a media kind to its table and asset URL column.
func assetTable(kind model.MediaKind) (table, column string, err error) {
	switch kind {
	case model.MediaImage:
		return "images", "image_url", nil
	case model.MediaVideo:
		return "videos", "video_url", nil
	default:
		return "", "", fmt.Errorf("unknown media kind %d", kind)
	}
}

// HasAsset reports whether a record exists for assetURL.
func (cdb *CrawlDB) HasAsset(ctx context.Context, kind model.MediaKind, assetURL string) (bool, error) {
	table, column, err := assetTable(kind)
	if err != nil {
		return false, err
	}

	var count int
	query := `SELECT COUNT(*) FROM ` + table + ` WHERE ` + column + ` = ?` //nolint:gosec // table and column come from assetTable
	if err := cdb.db.QueryRowContext(ctx, query, assetURL).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	return count > 0, nil
}

// InsertAsset records a downloaded asset. It returns false without error
// when a record for asset.AssetURL already exists; the first record wins.
func (cdb *CrawlDB) InsertAsset(ctx context.Context, asset *model.MediaAsset) (bool, error) {
	table, column, err := assetTable(asset.Kind)
	if err != nil {
		return false, err
	}

	exifJSON := ""
	if len(asset.EXIF) > 0 {
		data, err := json.Marshal(asset.EXIF)
		if err != nil {
			return false, fmt.Errorf("failed to serialize exif: %w", err)
		}
		exifJSON = string(data)
	}

	query := `INSERT OR IGNORE INTO ` + table + ` (url, ` + column + `, filename, content_hash, exif) VALUES (?, ?, ?, ?, ?)` //nolint:gosec // see assetTable
	result, err := cdb.db.ExecContext(ctx, query,
		asset.PageURL,
		asset.AssetURL,
		asset.Filename,
		asset.ContentHash,
		exifJSON,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert %s: %w", asset.Kind, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert %s: %w", asset.Kind, err)
	}
	if n == 0 {
		return false, nil
	}

	if id, err := result.LastInsertId(); err == nil {
		asset.ID = id
	}
	return true, nil
}

// ListAssets returns every asset of the given kind in insertion order.
func (cdb *CrawlDB) ListAssets(ctx context.Context, kind model.MediaKind) ([]model.MediaAsset, error) {
	table, column, err := assetTable(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, url, ` + column + `, filename, content_hash, exif FROM ` + table + ` ORDER BY id` //nolint:gosec // see assetTable
	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var assets []model.MediaAsset
	for rows.Next() {
		a := model.MediaAsset{Kind: kind}
		var exifJSON string
		if err := rows.Scan(&a.ID, &a.PageURL, &a.AssetURL, &a.Filename, &a.ContentHash, &exifJSON); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		if exifJSON != "" {
			if err := json.Unmarshal([]byte(exifJSON), &a.EXIF); err != nil {
				a.EXIF = nil // Keep the asset even if its metadata is unreadable
			}
		}
		assets = append(assets, a)
	}

	return assets, rows.Err()
}

// Summary aggregates the store for reporting.
func (cdb *CrawlDB) Summary(ctx context.Context) (*model.CrawlSummary, error) {
	summary := &model.CrawlSummary{
		PagesByDepth:    make(map[int]int),
		PagesByLanguage: make(map[string]int),
		Assets:          make(map[model.MediaKind]int),
	}

	rows, err := cdb.db.QueryContext(ctx, `
	SELECT depth, language, COUNT(*), SUM(CASE WHEN content = '' THEN 1 ELSE 0 END)
	FROM pages GROUP BY depth, language`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var depth, count, empty int
		var lang string
		if err := rows.Scan(&depth, &lang, &count, &empty); err != nil {
			return nil, fmt.Errorf("failed to scan page summary: %w", err)
		}
		summary.Pages += count
		summary.EmptyPages += empty
		summary.PagesByDepth[depth] += count
		summary.PagesByLanguage[lang] += count
		if depth > summary.MaxDepth {
			summary.MaxDepth = depth
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, kind := range model.MediaKinds {
		table, _, err := assetTable(kind)
		if err != nil {
			return nil, err
		}
		var count int
		if err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil { //nolint:gosec // see assetTable
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		summary.Assets[kind] = count
	}

	err = cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE exif != ''`).Scan(&summary.ImagesWithEXIF)
	if err != nil {
		return nil, fmt.Errorf("failed to count exif images: %w", err)
	}

	return summary, nil
}

// timestampFormats contains the timestamp formats that may appear in the store.
var timestampFormats = []string{
	model.TimestampLayout,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a stored timestamp in local time, trying each known
// format. It returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.ParseInLocation(format, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
