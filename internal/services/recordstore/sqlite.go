package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"larder/internal/recipe"
	"larder/internal/services"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS recipes (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	dietary_flags TEXT NOT NULL DEFAULT '',
	ingredients TEXT NOT NULL DEFAULT '',
	steps TEXT NOT NULL DEFAULT '',
	prep_minutes INTEGER NOT NULL DEFAULT 0,
	cook_minutes INTEGER NOT NULL DEFAULT 0,
	total_minutes INTEGER NOT NULL DEFAULT 0,
	servings INTEGER NOT NULL DEFAULT 0,
	difficulty TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes(created_at);
`

// SQLite persists records to a local database file. It implements the same
// surface as the Airtable client so the pipeline can swap backends.
type SQLite struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "store", "", "sqlite db_path not configured", nil)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "store", "create database directory", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open database", path, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, services.Wrap(services.ErrConfiguration, "store", "apply pragma", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, services.Wrap(services.ErrConfiguration, "store", "ensure schema", "", err)
	}
	return &SQLite{db: db, path: path, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Persist stores the record and returns a copy carrying the generated id.
func (s *SQLite) Persist(ctx context.Context, rec recipe.Record) (recipe.Record, error) {
	created := rec.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	id := uuid.NewString()

	ingredients := make([]string, 0, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		ingredients = append(ingredients, ing.Display())
	}
	steps := make([]string, 0, len(rec.Steps))
	for i, step := range rec.Steps {
		steps = append(steps, fmt.Sprintf("%d. %s", i+1, step))
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO recipes (
	id, name, category, dietary_flags, ingredients, steps,
	prep_minutes, cook_minutes, total_minutes, servings,
	difficulty, description, image_url, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Name, string(rec.Category), strings.Join(rec.Flags, ", "),
		strings.Join(ingredients, "\n"), strings.Join(steps, "\n"),
		rec.PrepMinutes, rec.CookMinutes, rec.TotalMinutes, rec.Servings,
		string(rec.Difficulty), rec.Description, rec.ImageURL,
		created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return rec, services.Wrap(services.ErrTransport, "store", "insert record", "", err)
	}
	rec.PersistedID = id
	rec.CreatedAt = created
	return rec, nil
}

// List returns all stored records, oldest first.
func (s *SQLite) List(ctx context.Context) ([]recipe.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, category, dietary_flags, ingredients, steps,
	prep_minutes, cook_minutes, total_minutes, servings,
	difficulty, description, image_url, created_at
FROM recipes ORDER BY created_at ASC`)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "store", "query records", "", err)
	}
	defer rows.Close()

	var records []recipe.Record
	for rows.Next() {
		var (
			rec                                  recipe.Record
			category, difficulty                 string
			flags, ingredients, steps, createdAt string
		)
		if err := rows.Scan(
			&rec.PersistedID, &rec.Name, &category, &flags, &ingredients, &steps,
			&rec.PrepMinutes, &rec.CookMinutes, &rec.TotalMinutes, &rec.Servings,
			&difficulty, &rec.Description, &rec.ImageURL, &createdAt,
		); err != nil {
			return nil, services.Wrap(services.ErrTransport, "store", "scan record", "", err)
		}
		rec.Category = recipe.ParseCategory(category)
		rec.Difficulty = recipe.ParseDifficulty(difficulty)
		for _, flag := range strings.Split(flags, ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				rec.Flags = append(rec.Flags, flag)
			}
		}
		for _, line := range strings.Split(ingredients, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				rec.Ingredients = append(rec.Ingredients, recipe.ParseIngredientLine(line))
			}
		}
		for _, line := range strings.Split(steps, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				rec.Steps = append(rec.Steps, stripNumberPrefix(line))
			}
		}
		if when, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = when
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransport, "store", "iterate records", "", err)
	}
	return records, nil
}

// ValidateConfig checks the database file is usable.
func (s *SQLite) ValidateConfig(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return services.Wrap(services.ErrConfiguration, "store", "probe database", s.path, err)
	}
	return nil
}

func stripNumberPrefix(line string) string {
	if dot := strings.Index(line, ". "); dot > 0 {
		allDigits := true
		for _, r := range line[:dot] {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return strings.TrimSpace(line[dot+2:])
		}
	}
	return line
}
