package storage

import "time"

// Domain models that mirror SQL tables in schema.go.
// These are lightweight data transfer structs, NOT ORM models.

// Symbol kinds recorded in the symbols table.
const (
	KindClass    = "class"
	KindMethod   = "method"
	KindFunction = "function"
	KindConstant = "constant"
)

// Run represents one `sourcedoc generate` invocation.
// Maps to the runs table.
type Run struct {
	ID           string    `json:"id"`           // run_id: UUID
	RootDir      string    `json:"rootDir"`      // root_dir: absolute project root
	StartedAt    time.Time `json:"startedAt"`    // started_at
	FinishedAt   time.Time `json:"finishedAt"`   // finished_at: zero while running
	FilesTotal   int       `json:"filesTotal"`   // files_total: discovered files
	FilesWritten int       `json:"filesWritten"` // files_written: rendered and written
	FilesCached  int       `json:"filesCached"`  // files_cached: served from the parse cache
	FilesFailed  int       `json:"filesFailed"`  // files_failed: read or write errors
}

// Document represents one generated Markdown document.
// Maps to the documents table.
type Document struct {
	FilePath    string    `json:"filePath"`    // file_path: source path relative to the root
	Language    string    `json:"language"`    // language: dispatcher language name
	Description string    `json:"description"` // description: file description
	ContentHash string    `json:"contentHash"` // content_hash: SHA-256 of the source
	OutputPath  string    `json:"outputPath"`  // output_path: where the Markdown was written
	Markdown    string    `json:"markdown"`    // markdown: rendered document
	ParsedJSON  string    `json:"-"`           // parsed_json: ParsedFile as JSON
	RunID       string    `json:"runId"`       // run_id: FK to runs
	GeneratedAt time.Time `json:"generatedAt"` // generated_at
}

// Symbol represents a class, method, function or constant found in a document.
// Maps to the symbols table.
type Symbol struct {
	FilePath    string `json:"filePath"`         // file_path: FK to documents
	Kind        string `json:"kind"`             // kind: class, method, function, constant
	Name        string `json:"name"`             // name
	Parent      string `json:"parent,omitempty"` // parent: owning class for methods
	Signature   string `json:"signature"`        // signature: rendered signature or constant value
	Line        int    `json:"line"`             // line: 1-based, 0 for constants
	Description string `json:"description"`      // description
}
