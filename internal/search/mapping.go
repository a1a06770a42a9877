package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for game documents.
//
// Titles carry English stemming plus a simple-analyzed twin for prefix and
// fuzzy matching against unstemmed terms. Studio names and genres use the
// simple analyzer so "Valve" and "valve" match without stemming.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true
	title.IncludeTermVectors = true

	titleRaw := bleve.NewTextFieldMapping()
	titleRaw.Name = "title_raw"
	titleRaw.Analyzer = simple.Name
	titleRaw.Store = false

	doc.AddFieldMappingsAt("title", title, titleRaw)

	for _, field := range []string{"developer", "publisher", "genres", "tags"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = simple.Name
		fm.Store = false
		doc.AddFieldMappingsAt(field, fm)
	}

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	id.Store = true
	doc.AddFieldMappingsAt("id", id)

	// Cover is returned with hits but never searched.
	cover := bleve.NewTextFieldMapping()
	cover.Index = false
	cover.Store = true
	doc.AddFieldMappingsAt("cover", cover)

	year := bleve.NewNumericFieldMapping()
	year.Store = true
	doc.AddFieldMappingsAt("year", year)

	rating := bleve.NewNumericFieldMapping()
	rating.Store = true
	doc.AddFieldMappingsAt("rating", rating)

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
