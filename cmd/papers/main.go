// Command papers loads the paper corpus and runs the canned access-pattern
// queries, printing JSON results with timing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/YaoxuanLiu37/transitpapers/internal/appconf"
	"github.com/YaoxuanLiu37/transitpapers/internal/clock"
	"github.com/YaoxuanLiu37/transitpapers/internal/logging"
	"github.com/YaoxuanLiu37/transitpapers/internal/papers"
)

// QueryOutput is the envelope printed for every query subcommand.
type QueryOutput struct {
	QueryType       string             `json:"query_type"`
	Parameters      map[string]any     `json:"parameters"`
	Results         []papers.PaperItem `json:"results"`
	Count           int                `json:"count"`
	ExecutionTimeMs int64              `json:"execution_time_ms"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: papers <load|recent|author|get|daterange|keyword|fts> [flags]")
	}

	cfg, err := appconf.Load()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.Verbose)

	store, err := papers.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	clk := clock.RealClock{}

	switch args[0] {
	case "load":
		fs := flag.NewFlagSet("load", flag.ExitOnError)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: papers load <papers.json>")
		}
		report, err := store.LoadCorpus(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		return printJSON(report)

	case "recent":
		fs := flag.NewFlagSet("recent", flag.ExitOnError)
		limit := fs.Int("limit", papers.DefaultQueryLimit, "maximum papers to return")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: papers recent [--limit N] <category>")
		}
		category := fs.Arg(0)

		start := clk.NowUnixMilli()
		results, err := store.RecentInCategory(ctx, category, *limit)
		if err != nil {
			return err
		}
		return printJSON(QueryOutput{
			QueryType:       "recent_in_category",
			Parameters:      map[string]any{"category": category, "limit": *limit},
			Results:         results,
			Count:           len(results),
			ExecutionTimeMs: clk.NowUnixMilli() - start,
		})

	case "author":
		fs := flag.NewFlagSet("author", flag.ExitOnError)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: papers author <author_name>")
		}
		authorName := fs.Arg(0)

		start := clk.NowUnixMilli()
		results, err := store.PapersByAuthor(ctx, authorName)
		if err != nil {
			return err
		}
		return printJSON(QueryOutput{
			QueryType:       "papers_by_author",
			Parameters:      map[string]any{"author_name": authorName},
			Results:         results,
			Count:           len(results),
			ExecutionTimeMs: clk.NowUnixMilli() - start,
		})

	case "get":
		fs := flag.NewFlagSet("get", flag.ExitOnError)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: papers get <arxiv_id>")
		}
		arxivID := fs.Arg(0)

		start := clk.NowUnixMilli()
		item, err := store.GetPaperByID(ctx, arxivID)
		if err != nil {
			return err
		}
		results := []papers.PaperItem{}
		if item != nil {
			results = append(results, *item)
		}
		return printJSON(QueryOutput{
			QueryType:       "get_paper_by_id",
			Parameters:      map[string]any{"arxiv_id": arxivID},
			Results:         results,
			Count:           len(results),
			ExecutionTimeMs: clk.NowUnixMilli() - start,
		})

	case "daterange":
		fs := flag.NewFlagSet("daterange", flag.ExitOnError)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 3 {
			return fmt.Errorf("usage: papers daterange <category> <start_date> <end_date>")
		}
		category, startDate, endDate := fs.Arg(0), fs.Arg(1), fs.Arg(2)

		start := clk.NowUnixMilli()
		results, err := store.PapersInDateRange(ctx, category, startDate, endDate)
		if err != nil {
			return err
		}
		return printJSON(QueryOutput{
			QueryType: "papers_in_date_range",
			Parameters: map[string]any{
				"category":   category,
				"start_date": startDate,
				"end_date":   endDate,
			},
			Results:         results,
			Count:           len(results),
			ExecutionTimeMs: clk.NowUnixMilli() - start,
		})

	case "keyword":
		fs := flag.NewFlagSet("keyword", flag.ExitOnError)
		limit := fs.Int("limit", papers.DefaultQueryLimit, "maximum papers to return")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: papers keyword [--limit N] <keyword>")
		}
		keyword := fs.Arg(0)

		start := clk.NowUnixMilli()
		results, err := store.PapersByKeyword(ctx, keyword, *limit)
		if err != nil {
			return err
		}
		return printJSON(QueryOutput{
			QueryType:       "papers_by_keyword",
			Parameters:      map[string]any{"keyword": keyword, "limit": *limit},
			Results:         results,
			Count:           len(results),
			ExecutionTimeMs: clk.NowUnixMilli() - start,
		})

	case "fts":
		fs := flag.NewFlagSet("fts", flag.ExitOnError)
		limit := fs.Int("limit", papers.DefaultQueryLimit, "maximum papers to return")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: papers fts [--limit N] <query>")
		}
		query := fs.Arg(0)

		start := clk.NowUnixMilli()
		results, err := store.SearchFullText(ctx, query, *limit)
		if err != nil {
			return err
		}
		return printJSON(QueryOutput{
			QueryType:       "full_text_search",
			Parameters:      map[string]any{"query": query, "limit": *limit},
			Results:         results,
			Count:           len(results),
			ExecutionTimeMs: clk.NowUnixMilli() - start,
		})

	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func printJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}
