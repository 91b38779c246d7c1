package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for catalog documents.
// Track titles, artist and album names get English analysis for full-text
// matching; type and genres use the keyword analyzer so filters are exact.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = en.AnalyzerName
	nameField.Store = true
	nameField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("name", nameField)

	artistField := bleve.NewTextFieldMapping()
	artistField.Analyzer = en.AnalyzerName
	artistField.Store = true
	artistField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("artist", artistField)

	albumField := bleve.NewTextFieldMapping()
	albumField.Analyzer = en.AnalyzerName
	albumField.Store = true
	albumField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("album", albumField)

	composerField := bleve.NewTextFieldMapping()
	composerField.Analyzer = simple.Name
	composerField.Store = true
	docMapping.AddFieldMappingsAt("composer", composerField)

	// Credits are searchable text ("tenor saxophone: John Coltrane") but
	// not stored; the catalog holds the canonical copy.
	creditsField := bleve.NewTextFieldMapping()
	creditsField.Analyzer = en.AnalyzerName
	creditsField.Store = false
	docMapping.AddFieldMappingsAt("credits", creditsField)

	typeField := bleve.NewTextFieldMapping()
	typeField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("type", typeField)

	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idField)

	genresField := bleve.NewTextFieldMapping()
	genresField.Analyzer = keyword.Name
	genresField.Store = true
	genresField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("genres", genresField)

	labelField := bleve.NewTextFieldMapping()
	labelField.Analyzer = simple.Name
	labelField.Store = true
	docMapping.AddFieldMappingsAt("label", labelField)

	durationField := bleve.NewNumericFieldMapping()
	durationField.Store = true
	docMapping.AddFieldMappingsAt("duration", durationField)

	yearField := bleve.NewNumericFieldMapping()
	yearField.Store = true
	docMapping.AddFieldMappingsAt("year", yearField)

	createdAtField := bleve.NewNumericFieldMapping()
	createdAtField.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtField)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
