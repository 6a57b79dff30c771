// Package search provides full-text search over generated documentation.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/sourcedoc/internal/storage"
)

const (
	batchSize     = 1000
	defaultLimit  = 15
	maxLimit      = 100
	maxHighlights = 3
)

// ErrEmptyQuery is returned when Search is called with a blank query.
var ErrEmptyQuery = errors.New("empty search query")

// Searcher defines full-text keyword search over rendered documents.
type Searcher interface {
	// Search executes a keyword search using bleve query string syntax.
	// Supports field scoping (language:go), boolean operators, phrases, wildcards and fuzzy matching.
	// Options may be nil (defaults will be applied).
	Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error)

	// Index adds or replaces documents, keyed by file path.
	Index(ctx context.Context, docs []*storage.Document) error

	// Delete removes documents by file path.
	Delete(ctx context.Context, filePaths []string) error

	// Count returns the number of indexed documents.
	Count() (uint64, error)

	// Close releases resources held by the searcher.
	Close() error
}

// Options narrows a search.
type Options struct {
	Limit    int    // 1-100, default 15
	Language string // exact language name, e.g. "go"
	FilePath string // wildcard pattern over the source path, e.g. "internal/*"
}

// Result is a single search hit with highlighted snippets.
type Result struct {
	FilePath    string   `json:"filePath"`
	Language    string   `json:"language"`
	Description string   `json:"description"`
	OutputPath  string   `json:"outputPath"`
	Score       float64  `json:"score"`
	Highlights  []string `json:"highlights"` // Matching snippets with <mark> tags
}

// bleveSearcher implements Searcher using an in-memory bleve index.
type bleveSearcher struct {
	index bleve.Index
	mu    sync.RWMutex // Protects index during updates
}

// New creates a Searcher backed by an in-memory bleve index holding docs.
func New(ctx context.Context, docs []*storage.Document) (Searcher, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	s := &bleveSearcher{index: index}
	if err := s.Index(ctx, docs); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index documents: %w", err)
	}

	return s, nil
}

// buildMapping creates the index mapping for documentation documents.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	// Markdown body (primary search target), stored for highlighting
	markdownMapping := bleve.NewTextFieldMapping()
	markdownMapping.Analyzer = "standard"
	markdownMapping.Store = true
	markdownMapping.IncludeTermVectors = true

	descriptionMapping := bleve.NewTextFieldMapping()
	descriptionMapping.Analyzer = "standard"
	descriptionMapping.Store = true

	// Symbol names, searchable as symbols:Widget
	symbolsMapping := bleve.NewTextFieldMapping()
	symbolsMapping.Analyzer = "standard"
	symbolsMapping.Store = false

	// Exact-match filters
	languageMapping := bleve.NewTextFieldMapping()
	languageMapping.Analyzer = "keyword"
	languageMapping.Store = true

	filePathMapping := bleve.NewTextFieldMapping()
	filePathMapping.Analyzer = "keyword"
	filePathMapping.Store = true

	outputPathMapping := bleve.NewTextFieldMapping()
	outputPathMapping.Analyzer = "keyword"
	outputPathMapping.Store = true
	outputPathMapping.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("markdown", markdownMapping)
	docMapping.AddFieldMappingsAt("description", descriptionMapping)
	docMapping.AddFieldMappingsAt("symbols", symbolsMapping)
	docMapping.AddFieldMappingsAt("language", languageMapping)
	docMapping.AddFieldMappingsAt("file_path", filePathMapping)
	docMapping.AddFieldMappingsAt("output_path", outputPathMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// toDocument converts a catalog document to a bleve document.
func toDocument(doc *storage.Document) map[string]interface{} {
	return map[string]interface{}{
		"markdown":    doc.Markdown,
		"description": doc.Description,
		"symbols":     symbolNames(doc),
		"language":    doc.Language,
		"file_path":   doc.FilePath,
		"output_path": doc.OutputPath,
	}
}

// symbolNames lists class, method and function names from the stored ParsedFile.
func symbolNames(doc *storage.Document) []string {
	parsed, err := storage.DecodeParsedFile(doc.ParsedJSON)
	if err != nil || parsed == nil {
		return nil
	}

	var names []string
	for _, s := range storage.SymbolsFromParsed(parsed) {
		names = append(names, s.Name)
	}
	return names
}

// Index adds or replaces documents in batches.
func (s *bleveSearcher) Index(ctx context.Context, docs []*storage.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.index.NewBatch()
	for i, doc := range docs {
		if i%batchSize == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if err := batch.Index(doc.FilePath, toDocument(doc)); err != nil {
			return fmt.Errorf("failed to add document %s to batch: %w", doc.FilePath, err)
		}

		if batch.Size() >= batchSize {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = s.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}

	return nil
}

// Delete removes documents by file path.
func (s *bleveSearcher) Delete(ctx context.Context, filePaths []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := s.index.NewBatch()
	for _, path := range filePaths {
		batch.Delete(path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// Search executes a keyword search using bleve QueryStringQuery syntax.
func (s *bleveSearcher) Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error) {
	if strings.TrimSpace(queryStr) == "" {
		return nil, ErrEmptyQuery
	}
	if options == nil {
		options = &Options{}
	}

	limit := options.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	queries := []query.Query{bleve.NewQueryStringQuery(queryStr)}

	if options.Language != "" {
		langQuery := bleve.NewTermQuery(strings.ToLower(options.Language))
		langQuery.SetField("language")
		queries = append(queries, langQuery)
	}

	if options.FilePath != "" {
		pathQuery := bleve.NewWildcardQuery(options.FilePath)
		pathQuery.SetField("file_path")
		queries = append(queries, pathQuery)
	}

	var finalQuery query.Query = queries[0]
	if len(queries) > 1 {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	request := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	request.Highlight = bleve.NewHighlightWithStyle("html")
	request.Highlight.Fields = []string{"markdown"}
	request.Fields = []string{"file_path", "language", "description", "output_path"}

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchResult, err := s.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]*Result, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		filePath, _ := hit.Fields["file_path"].(string)
		language, _ := hit.Fields["language"].(string)
		description, _ := hit.Fields["description"].(string)
		outputPath, _ := hit.Fields["output_path"].(string)

		results = append(results, &Result{
			FilePath:    filePath,
			Language:    language,
			Description: description,
			OutputPath:  outputPath,
			Score:       hit.Score,
			Highlights:  extractHighlights(hit.Fragments),
		})
	}

	return results, nil
}

// extractHighlights flattens bleve fragments, keeping at most maxHighlights snippets.
func extractHighlights(fragments map[string][]string) []string {
	var highlights []string
	for _, snippets := range fragments {
		highlights = append(highlights, snippets...)
	}
	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}
	return highlights
}

// Count returns the number of indexed documents.
func (s *bleveSearcher) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Close releases resources held by the searcher.
func (s *bleveSearcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
