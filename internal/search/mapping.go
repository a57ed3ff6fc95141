package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for post documents.
//
// Content and prompt are stemmed English text. Usernames use the simple
// analyzer so "alice" never stems. Ids are keywords for exact filtering.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	content := bleve.NewTextFieldMapping()
	content.Analyzer = en.AnalyzerName
	content.Store = true
	content.IncludeTermVectors = true // highlighting
	docMapping.AddFieldMappingsAt("content", content)

	prompt := bleve.NewTextFieldMapping()
	prompt.Analyzer = en.AnalyzerName
	prompt.Store = false
	docMapping.AddFieldMappingsAt("prompt", prompt)

	author := bleve.NewTextFieldMapping()
	author.Analyzer = simple.Name
	author.Store = true
	docMapping.AddFieldMappingsAt("author", author)

	for _, field := range []string{"id", "author_id", "audience"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	createdAt := bleve.NewNumericFieldMapping()
	createdAt.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAt)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
