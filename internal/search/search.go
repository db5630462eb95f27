// Package search provides a ranked full-text index over fund records.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/fundwallet/fundwallet-backend/internal/model"
)

// DefaultLimit caps results when the caller passes a non-positive limit.
const DefaultLimit = 20

// document is the indexed view of a fund.
type document struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	AMC     string `json:"amc"`
	Manager string `json:"manager"`
	Scheme  string `json:"scheme"`
	Detail  string `json:"detail"`
}

// Index is an in-memory bleve index. Document IDs are positions in the slice it was built from.
type Index struct {
	index bleve.Index
	size  int
}

// Build indexes funds in one batch.
func Build(funds []model.FundData) (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	batch := index.NewBatch()
	for i := range funds {
		f := &funds[i]
		doc := document{
			Symbol:  f.TradingSymbol,
			Name:    f.Fund,
			AMC:     f.AMC + " " + f.RealAmcName,
			Manager: f.Manager,
			Scheme:  f.Scheme + " " + f.SubScheme,
			Detail:  f.FundPrimaryDetail,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to add to batch: %w", err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to execute batch: %w", err)
	}

	return &Index{index: index, size: len(funds)}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	fundMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Store = false
	for _, field := range []string{"name", "amc", "manager", "scheme", "detail"} {
		fundMapping.AddFieldMappingsAt(field, textFieldMapping)
	}

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	keywordFieldMapping.Store = false
	fundMapping.AddFieldMappingsAt("symbol", keywordFieldMapping)

	indexMapping.DefaultMapping = fundMapping
	return indexMapping
}

// Search returns the positions of the best matching funds, best first.
// Name matches rank above matches in other fields; prefixes of the last
// term match so partially typed queries still find funds.
func (x *Index) Search(text string, limit int) ([]int, error) {
	terms := strings.Fields(strings.ToLower(text))
	if len(terms) == 0 {
		return []int{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	match := bleve.NewMatchQuery(strings.Join(terms, " "))
	match.SetOperator(query.MatchQueryOperatorAnd)

	nameMatch := bleve.NewMatchQuery(strings.Join(terms, " "))
	nameMatch.SetField("name")
	nameMatch.SetBoost(3)

	fuzzy := bleve.NewMatchQuery(strings.Join(terms, " "))
	fuzzy.SetFuzziness(1)
	fuzzy.SetOperator(query.MatchQueryOperatorAnd)

	prefix := bleve.NewPrefixQuery(terms[len(terms)-1])
	prefix.SetField("name")

	symbol := bleve.NewTermQuery(strings.ToUpper(strings.Join(terms, "")))
	symbol.SetField("symbol")
	symbol.SetBoost(5)

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(match, nameMatch, fuzzy, prefix, symbol), limit, 0, false)
	res, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	out := make([]int, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= x.size {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

// Close releases the index.
func (x *Index) Close() error {
	return x.index.Close()
}
