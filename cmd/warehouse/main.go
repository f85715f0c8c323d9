// Command warehouse manages the transit-data warehouse: schema migration,
// CSV loading, the analytical query catalog, and nearby-stop lookups.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/YaoxuanLiu37/transitpapers/internal/appconf"
	"github.com/YaoxuanLiu37/transitpapers/internal/logging"
	"github.com/YaoxuanLiu37/transitpapers/internal/warehouse"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: warehouse <migrate|load|query|nearby> [flags]")
	}

	cfg, err := appconf.LoadWarehouse()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.Verbose)

	store, err := warehouse.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	switch args[0] {
	case "migrate":
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		return printJSON(map[string]string{"status": "migrated"})

	case "load":
		fs := flag.NewFlagSet("load", flag.ExitOnError)
		migrateFirst := fs.Bool("migrate", false, "recreate the schema before loading")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: warehouse load [--migrate] <data_dir>")
		}
		if *migrateFirst {
			if err := store.Migrate(ctx); err != nil {
				return err
			}
		}
		report, err := store.LoadFromCSV(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		return printJSON(report)

	case "query":
		fs := flag.NewFlagSet("query", flag.ExitOnError)
		id := fs.String("query", "", "query id (Q1..Q10)")
		all := fs.Bool("all", false, "run the full catalog")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if (*id != "") == *all {
			return fmt.Errorf("exactly one of --query or --all is required")
		}
		if *all {
			results, err := store.RunAll(ctx)
			if err != nil {
				return err
			}
			return printJSON(results)
		}
		result, err := store.RunQuery(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(result)

	case "nearby":
		fs := flag.NewFlagSet("nearby", flag.ExitOnError)
		lat := fs.Float64("lat", 0, "latitude of the query point")
		lon := fs.Float64("lon", 0, "longitude of the query point")
		radius := fs.Float64("radius", 500, "search radius in meters")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		stops, err := store.AllStops(ctx)
		if err != nil {
			return err
		}
		idx := warehouse.NewStopIndex(stops)
		matches := idx.Nearby(*lat, *lon, *radius)
		return printJSON(map[string]any{
			"latitude":      *lat,
			"longitude":     *lon,
			"radius_meters": *radius,
			"stops":         matches,
			"count":         len(matches),
		})

	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func printJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
