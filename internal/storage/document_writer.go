package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/sourcedoc/internal/extractor"
	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

// DocumentWriter records generation runs, documents and symbols in the catalog.
type DocumentWriter struct {
	db *sql.DB
}

// NewDocumentWriter creates a DocumentWriter instance.
// DB must have schema already created via CreateSchema().
func NewDocumentWriter(db *sql.DB) *DocumentWriter {
	return &DocumentWriter{db: db}
}

// BeginRun inserts a new run row with a fresh UUID.
func (w *DocumentWriter) BeginRun(rootDir string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		RootDir:   rootDir,
		StartedAt: time.Now().UTC(),
	}

	_, err := sq.Insert("runs").
		Columns("run_id", "root_dir", "started_at").
		Values(run.ID, run.RootDir, run.StartedAt.Format(time.RFC3339)).
		RunWith(w.db).
		Exec()
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}

	return run, nil
}

// FinishRun stamps the run's finish time and final counters.
func (w *DocumentWriter) FinishRun(run *Run) error {
	run.FinishedAt = time.Now().UTC()

	_, err := sq.Update("runs").
		Set("finished_at", run.FinishedAt.Format(time.RFC3339)).
		Set("files_total", run.FilesTotal).
		Set("files_written", run.FilesWritten).
		Set("files_cached", run.FilesCached).
		Set("files_failed", run.FilesFailed).
		Where(sq.Eq{"run_id": run.ID}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.ID, err)
	}

	return nil
}

// WriteDocument replaces a document and its symbols in a single transaction.
func (w *DocumentWriter) WriteDocument(doc *Document, symbols []Symbol) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if err := deleteDocument(tx, doc.FilePath); err != nil {
		return err
	}

	_, err = sq.Insert("documents").
		Columns(
			"file_path", "language", "description", "content_hash", "output_path",
			"markdown", "parsed_json", "run_id", "generated_at",
		).
		Values(
			doc.FilePath,
			doc.Language,
			doc.Description,
			doc.ContentHash,
			doc.OutputPath,
			doc.Markdown,
			doc.ParsedJSON,
			doc.RunID,
			doc.GeneratedAt.UTC().Format(time.RFC3339),
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", doc.FilePath, err)
	}

	if len(symbols) > 0 {
		insert := sq.Insert("symbols").
			Columns("file_path", "kind", "name", "parent", "signature", "line", "description")
		for _, s := range symbols {
			insert = insert.Values(doc.FilePath, s.Kind, s.Name, s.Parent, s.Signature, s.Line, s.Description)
		}
		if _, err := insert.RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to write symbols for %s: %w", doc.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document %s: %w", doc.FilePath, err)
	}

	return nil
}

// DeleteDocument removes a document and its symbols.
// Deleting a missing document is not an error.
func (w *DocumentWriter) DeleteDocument(filePath string) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteDocument(tx, filePath); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of %s: %w", filePath, err)
	}
	return nil
}

func deleteDocument(tx *sql.Tx, filePath string) error {
	if _, err := sq.Delete("symbols").Where(sq.Eq{"file_path": filePath}).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to delete symbols for %s: %w", filePath, err)
	}
	if _, err := sq.Delete("documents").Where(sq.Eq{"file_path": filePath}).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", filePath, err)
	}
	return nil
}

// NewDocument builds the catalog row for a parsed and rendered file.
func NewDocument(parsed *extraction.ParsedFile, contentHash, outputPath, markdown, runID string) (*Document, error) {
	data, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parsed file %s: %w", parsed.Path, err)
	}

	return &Document{
		FilePath:    parsed.Path,
		Language:    parsed.Language,
		Description: parsed.Description,
		ContentHash: contentHash,
		OutputPath:  outputPath,
		Markdown:    markdown,
		ParsedJSON:  string(data),
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// SymbolsFromParsed flattens a ParsedFile into catalog symbols in source order:
// constants, then each class followed by its methods, then top-level functions.
func SymbolsFromParsed(parsed *extraction.ParsedFile) []Symbol {
	symbols := make([]Symbol, 0, len(parsed.Constants)+len(parsed.Classes)+parsed.MethodCount()+len(parsed.Functions))

	for _, c := range parsed.Constants {
		symbols = append(symbols, Symbol{
			FilePath:    parsed.Path,
			Kind:        KindConstant,
			Name:        c.Name,
			Signature:   c.Value,
			Description: c.Description,
		})
	}

	for _, class := range parsed.Classes {
		symbols = append(symbols, Symbol{
			FilePath:    parsed.Path,
			Kind:        KindClass,
			Name:        class.Name,
			Signature:   class.Extends,
			Line:        class.Line,
			Description: class.Description,
		})
		for _, m := range class.Methods {
			symbols = append(symbols, functionSymbol(parsed.Path, KindMethod, class.Name, m))
		}
	}

	for _, fn := range parsed.Functions {
		symbols = append(symbols, functionSymbol(parsed.Path, KindFunction, "", fn))
	}

	return symbols
}

func functionSymbol(path, kind, parent string, fn *extraction.ParsedFunction) Symbol {
	return Symbol{
		FilePath:    path,
		Kind:        kind,
		Name:        fn.Name,
		Parent:      parent,
		Signature:   extractor.Signature(fn),
		Line:        fn.Line,
		Description: fn.Description,
	}
}
