package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/YaoxuanLiu37/transitpapers/internal/logging"
)

// LoadReport summarizes a corpus load: how many papers went in and how many
// item rows they expanded to, per type.
type LoadReport struct {
	Papers       int            `json:"papers"`
	TotalItems   int            `json:"total_items"`
	ItemCounts   map[string]int `json:"item_counts"`
	DenormFactor float64        `json:"denormalization_factor"`
}

// LoadCorpus reads a JSON array of papers from path, expands each into its
// denormalized items, and writes them all to the store.
func (s *Store) LoadCorpus(ctx context.Context, path string) (*LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var corpus []Paper
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("failed to parse corpus %s: %w", path, err)
	}

	report := &LoadReport{ItemCounts: make(map[string]int)}
	var allItems []Item
	for _, p := range corpus {
		report.Papers++
		items := BuildItems(p)
		for _, item := range items {
			report.ItemCounts[item.Payload.ItemType]++
		}
		allItems = append(allItems, items...)
	}
	report.TotalItems = len(allItems)
	if report.Papers > 0 {
		report.DenormFactor = float64(report.TotalItems) / float64(report.Papers)
	}

	if err := s.PutItems(ctx, allItems); err != nil {
		return nil, fmt.Errorf("failed to store items: %w", err)
	}

	logging.LogOperation(s.logger, "corpus_loaded",
		slog.Int("papers", report.Papers),
		slog.Int("items", report.TotalItems),
		slog.Float64("denormalization_factor", report.DenormFactor))

	return report, nil
}
