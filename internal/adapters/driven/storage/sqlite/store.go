package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.AnalysisStore = (*Store)(nil)

// Store is a SQLite-backed analysis store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at dbPath and applies pending
// migrations. If dbPath is empty, defaults to ~/.raildocs/raildocs.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".raildocs", "raildocs.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for better concurrency under the HTTP server
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_analyses.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Save stores or updates an analysis result.
func (s *Store) Save(ctx context.Context, result *domain.AnalysisResult) error {
	classificationJSON, err := json.Marshal(result.Classification)
	if err != nil {
		return fmt.Errorf("marshalling classification: %w", err)
	}
	keyInfoJSON, err := json.Marshal(result.KeyInformation)
	if err != nil {
		return fmt.Errorf("marshalling key information: %w", err)
	}
	metadataJSON, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, document_type, summary, ocr_text, classification, key_information, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_type = excluded.document_type,
			summary = excluded.summary,
			ocr_text = excluded.ocr_text,
			classification = excluded.classification,
			key_information = excluded.key_information,
			metadata = excluded.metadata,
			created_at = excluded.created_at
	`, result.ID, result.DocumentType, result.Summary, result.OCRText,
		string(classificationJSON), string(keyInfoJSON), string(metadataJSON), createdAt)

	if err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}
	return nil
}

// Get retrieves an analysis result by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_type, summary, ocr_text, classification, key_information, metadata, created_at
		FROM analyses WHERE id = ?
	`, id)

	result, err := scanAnalysis(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return result, err
}

// List returns all stored results, newest first.
func (s *Store) List(ctx context.Context) ([]domain.AnalysisResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_type, summary, ocr_text, classification, key_information, metadata, created_at
		FROM analyses ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var results []domain.AnalysisResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		result, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analyses: %w", err)
	}
	return results, nil
}

// Delete removes a stored result. Deleting a missing ID is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}
	return nil
}

// scanAnalysis scans one analyses row via the given Scan function, so the
// same decoding serves both *sql.Row and *sql.Rows.
func scanAnalysis(scan func(dest ...any) error) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	var classificationJSON, keyInfoJSON, metadataJSON string

	if err := scan(&result.ID, &result.DocumentType, &result.Summary, &result.OCRText,
		&classificationJSON, &keyInfoJSON, &metadataJSON, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning analysis: %w", err)
	}

	if err := json.Unmarshal([]byte(classificationJSON), &result.Classification); err != nil {
		return nil, fmt.Errorf("unmarshalling classification: %w", err)
	}
	if err := json.Unmarshal([]byte(keyInfoJSON), &result.KeyInformation); err != nil {
		return nil, fmt.Errorf("unmarshalling key information: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &result.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}

	return &result, nil
}
