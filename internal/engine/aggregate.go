package engine

import (
	"sort"

	"adoscan/internal/inventory"
)

// RunSummary tallies a finished run. It is derived from the TaskResults
// and not persisted beyond the run.
type RunSummary struct {
	RunID        string `json:"runId"`
	TotalTargets int    `json:"totalTargets"`
	Succeeded    int    `json:"succeeded"`
	Failed       int    `json:"failed"`
	TotalRecords int    `json:"totalRecords"`
}

// Aggregate merges all TaskResults into one flat record collection plus a
// summary. Records come only from successful results; failed results count
// toward Failed and contribute nothing. The output is sorted by SortKey so
// repeated aggregation over the same results exports identically.
func Aggregate(runID string, results []TaskResult) ([]inventory.Record, RunSummary) {
	summary := RunSummary{
		RunID:        runID,
		TotalTargets: len(results),
	}

	var records []inventory.Record
	for _, res := range results {
		if res.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		records = append(records, res.Records...)
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].SortKey() < records[j].SortKey() })
	summary.TotalRecords = len(records)
	return records, summary
}
