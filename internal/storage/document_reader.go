package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

// DefaultSymbolLimit caps FindSymbols when the caller passes a non-positive limit.
const DefaultSymbolLimit = 50

var documentColumns = []string{
	"file_path", "language", "description", "content_hash", "output_path",
	"markdown", "parsed_json", "run_id", "generated_at",
}

// DocumentReader handles reading documents, symbols and runs from the catalog.
type DocumentReader struct {
	db *sql.DB
}

// NewDocumentReader creates a DocumentReader instance.
// DB should have schema already created.
func NewDocumentReader(db *sql.DB) *DocumentReader {
	return &DocumentReader{db: db}
}

// GetDocument retrieves a single document.
// Returns (nil, nil) if the document is not found.
func (r *DocumentReader) GetDocument(filePath string) (*Document, error) {
	rows, err := sq.Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", filePath, err)
	}
	defer rows.Close()

	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// ListDocuments retrieves all documents ordered by path.
func (r *DocumentReader) ListDocuments() ([]*Document, error) {
	rows, err := sq.Select(documentColumns...).
		From("documents").
		OrderBy("file_path").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// GetParsedFile decodes the stored ParsedFile for a document.
// Returns (nil, nil) if the document is not found.
func (r *DocumentReader) GetParsedFile(filePath string) (*extraction.ParsedFile, error) {
	doc, err := r.GetDocument(filePath)
	if err != nil || doc == nil {
		return nil, err
	}

	return DecodeParsedFile(doc.ParsedJSON)
}

// DecodeParsedFile decodes a parsed_json column value.
func DecodeParsedFile(data string) (*extraction.ParsedFile, error) {
	parsed := &extraction.ParsedFile{}
	if err := json.Unmarshal([]byte(data), parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parsed file: %w", err)
	}
	return parsed, nil
}

// FindSymbols returns symbols whose name starts with prefix (case-insensitive),
// optionally filtered by kind, ordered by name then path.
func (r *DocumentReader) FindSymbols(prefix, kind string, limit int) ([]*Symbol, error) {
	if limit <= 0 {
		limit = DefaultSymbolLimit
	}

	query := sq.Select("file_path", "kind", "name", "parent", "signature", "line", "description").
		From("symbols").
		Where(sq.Expr(`name LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")).
		OrderBy("name", "file_path", "line").
		Limit(uint64(limit))
	if kind != "" {
		query = query.Where(sq.Eq{"kind": kind})
	}

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to find symbols with prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var symbols []*Symbol
	for rows.Next() {
		s := &Symbol{}
		if err := rows.Scan(&s.FilePath, &s.Kind, &s.Name, &s.Parent, &s.Signature, &s.Line, &s.Description); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// LatestRun returns the most recently started run.
// Returns (nil, nil) if no run has been recorded.
func (r *DocumentReader) LatestRun() (*Run, error) {
	run := &Run{}
	var startedAt, finishedAt string

	err := sq.Select(
		"run_id", "root_dir", "started_at", "finished_at",
		"files_total", "files_written", "files_cached", "files_failed",
	).
		From("runs").
		OrderBy("started_at DESC", "rowid DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow().
		Scan(
			&run.ID, &run.RootDir, &startedAt, &finishedAt,
			&run.FilesTotal, &run.FilesWritten, &run.FilesCached, &run.FilesFailed,
		)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
	return run, nil
}

func scanDocuments(rows *sql.Rows) ([]*Document, error) {
	var docs []*Document
	for rows.Next() {
		doc := &Document{}
		var generatedAt string
		if err := rows.Scan(
			&doc.FilePath,
			&doc.Language,
			&doc.Description,
			&doc.ContentHash,
			&doc.OutputPath,
			&doc.Markdown,
			&doc.ParsedJSON,
			&doc.RunID,
			&generatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
