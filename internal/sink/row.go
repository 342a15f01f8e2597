package sink

import (
	"strings"
	"time"

	"github.com/sells-group/call-insights/internal/model"
)

// RowLayoutVersion is bumped whenever the column order changes.
const RowLayoutVersion = 1

// SourceMarker tags rows written by the pipeline.
const SourceMarker = "авто-анализ"

// TimestampLayout formats the first column.
const TimestampLayout = "2006-01-02 15:04:05"

var baseColumns = []string{
	"timestamp",
	"main_problem",
	"key_fear",
	"result_solution",
	"original_phrases",
	"tags",
}

var variantColumns = map[model.Variant][]string{
	model.VariantInsights:  {"product_insights", "feature_suggestions", "ux_improvements", "priority_level"},
	model.VariantCreatives: {"headlines", "ad_texts"},
}

// Header returns the column names for a variant in layout order.
func Header(v model.Variant) []string {
	h := make([]string, 0, len(baseColumns)+len(variantColumns[v])+1)
	h = append(h, baseColumns...)
	h = append(h, variantColumns[v]...)
	return append(h, "source")
}

// BuildRow flattens one committed call into sink cells. List fields are
// joined with model.ListDelimiter.
func BuildRow(now time.Time, a model.Analysis, d model.Derived) []string {
	row := []string{
		now.Format(TimestampLayout),
		a.MainProblem,
		a.KeyFear,
		a.ResultSolution,
		strings.Join(a.OriginalPhrases, model.ListDelimiter),
		strings.Join(a.Tags, model.ListDelimiter),
	}
	if d != nil {
		row = append(row, d.Columns()...)
	}
	return append(row, SourceMarker)
}

// recordsFromValues maps data rows onto the header in values[0]. Short rows
// are padded with "" and cells past the header are dropped.
func recordsFromValues(values [][]string) []map[string]string {
	if len(values) == 0 {
		return []map[string]string{}
	}
	header := values[0]
	out := make([]map[string]string, 0, len(values)-1)
	for _, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		rec := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
