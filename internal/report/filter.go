package report

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/lintmux/lintmux/internal/diag"
)

// Filter narrows diagnostics to those matching a bleve query string over
// message, rule, source and file path, e.g. `rule:semi` or `unused`.
// Relative presentation order is preserved. An empty query returns the
// input unchanged.
func Filter(diags []diag.Diagnostic, query string) ([]diag.Diagnostic, error) {
	if query == "" {
		return diags, nil
	}

	index, err := bleve.NewMemOnly(buildFilterMapping())
	if err != nil {
		return nil, fmt.Errorf("creating filter index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for i, d := range diags {
		doc := map[string]interface{}{
			"message": d.Message,
			"rule":    d.Rule,
			"source":  d.Source,
			"file":    d.File,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			return nil, fmt.Errorf("indexing diagnostic: %w", err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("building filter index: %w", err)
	}

	request := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), len(diags), 0, false)
	result, err := index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("running filter query: %w", err)
	}

	matched := make(map[int]bool, len(result.Hits))
	for _, hit := range result.Hits {
		if i, err := strconv.Atoi(hit.ID); err == nil {
			matched[i] = true
		}
	}

	out := make([]diag.Diagnostic, 0, len(matched))
	for i, d := range diags {
		if matched[i] {
			out = append(out, d)
		}
	}
	return out, nil
}

func buildFilterMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "standard"

	keywordMapping := bleve.NewTextFieldMapping()
	keywordMapping.Analyzer = "keyword"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("message", textMapping)
	docMapping.AddFieldMappingsAt("rule", keywordMapping)
	docMapping.AddFieldMappingsAt("source", keywordMapping)
	docMapping.AddFieldMappingsAt("file", textMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
