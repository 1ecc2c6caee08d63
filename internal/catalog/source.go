package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/fontpick/internal/log"
)

// Source supplies raw catalog entries in popularity order.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Font, error)
}

//go:embed fonts.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Fonts []Font `yaml:"fonts"`
}

func parseCatalog(data []byte) ([]Font, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Fonts))
	for i, f := range file.Fonts {
		if strings.TrimSpace(f.Family) == "" {
			return nil, fmt.Errorf("font %d: family is required", i)
		}
		if _, dup := seen[f.Family]; dup {
			return nil, fmt.Errorf("font %d: duplicate family %q", i, f.Family)
		}
		seen[f.Family] = struct{}{}
	}
	return file.Fonts, nil
}

// EmbeddedSource serves the catalog bundled with the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(ctx context.Context) ([]Font, error) {
	return parseCatalog(embeddedCatalog)
}

// FileSource reads a YAML catalog with the same layout as the bundled one.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file" }

func (s FileSource) Load(ctx context.Context) ([]Font, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return parseCatalog(data)
}

// SQLiteSchema is the table layout SQLiteSource reads. Variants and subsets
// are comma separated; rank orders by popularity (lower is more popular).
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS fonts (
	family   TEXT PRIMARY KEY,
	category TEXT NOT NULL DEFAULT 'sans-serif',
	variants TEXT NOT NULL DEFAULT 'regular',
	subsets  TEXT NOT NULL DEFAULT 'latin',
	rank     INTEGER NOT NULL DEFAULT 0
);`

// SQLiteSource reads fonts from a SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLiteSource opens the database at path read-only.
func OpenSQLiteSource(path string) (*SQLiteSource, error) {
	log.Debug(log.CatDB, "Opening font database", "path", path)
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open font database", err, "path", path)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		log.ErrorErr(log.CatDB, "Failed to ping font database", err, "path", path)
		return nil, err
	}
	return &SQLiteSource{db: db}, nil
}

// NewSQLiteSource wraps an open database handle.
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

func (s *SQLiteSource) Name() string { return "sqlite" }

func (s *SQLiteSource) Load(ctx context.Context) ([]Font, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT family, category, variants, subsets FROM fonts ORDER BY rank, family`)
	if err != nil {
		log.ErrorErr(log.CatDB, "Font query failed", err)
		return nil, fmt.Errorf("querying fonts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fonts []Font
	for rows.Next() {
		var (
			f                 Font
			category          string
			variants, subsets string
		)
		if err := rows.Scan(&f.Family, &category, &variants, &subsets); err != nil {
			return nil, fmt.Errorf("scanning font row: %w", err)
		}
		f.Category = Category(category)
		f.Variants = splitList(variants)
		f.Subsets = splitList(subsets)
		fonts = append(fonts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fonts: %w", err)
	}
	log.Debug(log.CatDB, "Loaded fonts from database", "count", len(fonts))
	return fonts, nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
