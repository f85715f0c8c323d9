package warehouse

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/YaoxuanLiu37/transitpapers/internal/logging"
)

// insertBatchSize is the number of rows per multi-row INSERT statement.
const insertBatchSize = 1000

// RequiredFiles lists the CSV files the loader expects in the data directory.
var RequiredFiles = []string{
	"lines.csv",
	"stops.csv",
	"line_stops.csv",
	"trips.csv",
	"stop_events.csv",
}

// LineRecord is a row of lines.csv.
type LineRecord struct {
	LineName    string
	VehicleType string
}

// StopRecord is a row of stops.csv.
type StopRecord struct {
	StopName  string
	Latitude  float64
	Longitude float64
}

// LineStopRecord is a row of line_stops.csv, keyed by names as in the source.
type LineStopRecord struct {
	LineName   string
	StopName   string
	Sequence   int
	TimeOffset int
}

// TripRecord is a row of trips.csv.
type TripRecord struct {
	TripID             string
	LineName           string
	ScheduledDeparture string
	VehicleID          string
}

// StopEventRecord is a row of stop_events.csv.
type StopEventRecord struct {
	TripID        string
	StopName      string
	Scheduled     string
	Actual        string
	PassengersOn  int
	PassengersOff int
}

// TableCount pairs a table name with its post-load row count.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// LoadReport summarizes a completed CSV load.
type LoadReport struct {
	Tables []TableCount `json:"tables"`
	Total  int64        `json:"total"`
}

// LoadFromCSV loads all five CSV files from dataDir into the warehouse.
// Lines and trips deduplicate on their natural keys; stops, line_stops and
// stop_events are inserted with strict 1:1 row parity against the source.
func (s *Store) LoadFromCSV(ctx context.Context, dataDir string) (*LoadReport, error) {
	for _, name := range RequiredFiles {
		path := filepath.Join(dataDir, name)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("file not found: %s", path)
		}
	}

	report := &LoadReport{}

	// ---------- lines ----------
	lines, err := parseCSVFile(filepath.Join(dataDir, "lines.csv"), ParseLines)
	if err != nil {
		return nil, err
	}
	lineRows := make([][]any, 0, len(lines))
	for _, l := range lines {
		lineRows = append(lineRows, []any{l.LineName, l.VehicleType})
	}
	err = s.insertBatched(ctx, "lines", []string{"line_name", "vehicle_type"},
		"ON CONFLICT (line_name) DO NOTHING", lineRows)
	if err != nil {
		return nil, fmt.Errorf("loading lines: %w", err)
	}
	if err := s.recordCount(ctx, "lines", report); err != nil {
		return nil, err
	}

	lineIDByName, err := s.fetchIDMap(ctx, "SELECT line_name, line_id FROM lines")
	if err != nil {
		return nil, fmt.Errorf("building line map: %w", err)
	}

	// ---------- stops (no dedup; 1:1 with CSV rows) ----------
	stops, err := parseCSVFile(filepath.Join(dataDir, "stops.csv"), ParseStops)
	if err != nil {
		return nil, err
	}
	stopRows := make([][]any, 0, len(stops))
	for _, st := range stops {
		stopRows = append(stopRows, []any{st.StopName, st.Latitude, st.Longitude})
	}
	err = s.insertBatched(ctx, "stops", []string{"stop_name", "latitude", "longitude"}, "", stopRows)
	if err != nil {
		return nil, fmt.Errorf("loading stops: %w", err)
	}
	if err := s.recordCount(ctx, "stops", report); err != nil {
		return nil, err
	}

	// Duplicate stop names resolve to the LATEST inserted stop_id.
	stopIDByName, err := s.fetchIDMap(ctx, `
		SELECT stop_name, MAX(stop_id) AS stop_id
		FROM stops
		GROUP BY stop_name`)
	if err != nil {
		return nil, fmt.Errorf("building stop map: %w", err)
	}

	// ---------- line_stops ----------
	lineStops, err := parseCSVFile(filepath.Join(dataDir, "line_stops.csv"), ParseLineStops)
	if err != nil {
		return nil, err
	}
	lineStopRows, skipped := ResolveLineStops(lineStops, lineIDByName, stopIDByName)
	if skipped > 0 {
		logging.LogOperation(s.logger, "line_stops_rows_skipped", slog.Int("skipped", skipped))
	}
	err = s.insertBatched(ctx, "line_stops",
		[]string{"line_id", "stop_id", "sequence", "time_offset"}, "", lineStopRows)
	if err != nil {
		return nil, fmt.Errorf("loading line_stops: %w", err)
	}
	if err := s.recordCount(ctx, "line_stops", report); err != nil {
		return nil, err
	}

	// ---------- trips ----------
	trips, err := parseCSVFile(filepath.Join(dataDir, "trips.csv"), ParseTrips)
	if err != nil {
		return nil, err
	}
	tripRows, skipped := ResolveTrips(trips, lineIDByName)
	if skipped > 0 {
		logging.LogOperation(s.logger, "trips_rows_skipped", slog.Int("skipped", skipped))
	}
	err = s.insertBatched(ctx, "trips",
		[]string{"trip_id", "line_id", "scheduled_departure", "vehicle_id"},
		"ON CONFLICT (trip_id) DO NOTHING", tripRows)
	if err != nil {
		return nil, fmt.Errorf("loading trips: %w", err)
	}
	if err := s.recordCount(ctx, "trips", report); err != nil {
		return nil, err
	}

	// ---------- stop_events ----------
	events, err := parseCSVFile(filepath.Join(dataDir, "stop_events.csv"), ParseStopEvents)
	if err != nil {
		return nil, err
	}
	eventRows, skipped := ResolveStopEvents(events, stopIDByName)
	if skipped > 0 {
		logging.LogOperation(s.logger, "stop_events_rows_skipped", slog.Int("skipped", skipped))
	}
	err = s.insertBatched(ctx, "stop_events",
		[]string{"trip_id", "stop_id", "scheduled", "actual", "passengers_on", "passengers_off"},
		"", eventRows)
	if err != nil {
		return nil, fmt.Errorf("loading stop_events: %w", err)
	}
	if err := s.recordCount(ctx, "stop_events", report); err != nil {
		return nil, err
	}

	logging.LogOperation(s.logger, "csv_load_completed", slog.Int64("total_rows", report.Total))
	return report, nil
}

// ResolveLineStops translates line and stop names to surrogate ids.
// Rows referencing unknown names are skipped and counted.
func ResolveLineStops(records []LineStopRecord, lineIDByName, stopIDByName map[string]int64) (rows [][]any, skipped int) {
	for _, r := range records {
		lineID, okLine := lineIDByName[r.LineName]
		stopID, okStop := stopIDByName[r.StopName]
		if !okLine || !okStop {
			skipped++
			continue
		}
		rows = append(rows, []any{lineID, stopID, r.Sequence, r.TimeOffset})
	}
	return rows, skipped
}

// ResolveTrips translates line names to ids, skipping unknown lines.
func ResolveTrips(records []TripRecord, lineIDByName map[string]int64) (rows [][]any, skipped int) {
	for _, r := range records {
		lineID, ok := lineIDByName[r.LineName]
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, []any{r.TripID, lineID, r.ScheduledDeparture, r.VehicleID})
	}
	return rows, skipped
}

// ResolveStopEvents translates stop names to ids, skipping unknown stops.
func ResolveStopEvents(records []StopEventRecord, stopIDByName map[string]int64) (rows [][]any, skipped int) {
	for _, r := range records {
		stopID, ok := stopIDByName[r.StopName]
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, []any{r.TripID, stopID, r.Scheduled, r.Actual, r.PassengersOn, r.PassengersOff})
	}
	return rows, skipped
}

// insertBatched inserts rows with multi-row INSERT statements inside a single
// transaction. conflictClause may be empty or an ON CONFLICT clause.
func (s *Store) insertBatched(ctx context.Context, table string, columns []string, conflictClause string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	logging.LogOperation(s.logger, "inserting_rows",
		slog.String("table", table), slog.Int("count", len(rows)))

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, s.logger, "bulk_insert_"+table)

	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		query, args := buildMultiInsert(table, columns, conflictClause, batch)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert %s batch: %w", table, err)
		}
	}

	return tx.Commit()
}

// buildMultiInsert constructs a multi-row INSERT with positional placeholders.
// Only placeholders are used for values; inputs never reach the query text.
func buildMultiInsert(table string, columns []string, conflictClause string, rows [][]any) (string, []any) {
	var query strings.Builder
	query.WriteString("INSERT INTO ")
	query.WriteString(table)
	query.WriteString(" (")
	query.WriteString(strings.Join(columns, ", "))
	query.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	n := 1
	for i, row := range rows {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(")
		for j := range columns {
			if j > 0 {
				query.WriteString(", ")
			}
			fmt.Fprintf(&query, "$%d", n)
			n++
			args = append(args, row[j])
		}
		query.WriteString(")")
	}

	if conflictClause != "" {
		query.WriteString(" ")
		query.WriteString(conflictClause)
	}

	return query.String(), args
}

// recordCount appends the current row count of table to the report.
func (s *Store) recordCount(ctx context.Context, table string, report *LoadReport) error {
	var count int64
	// Table names come from the fixed loader schedule, never from input.
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return fmt.Errorf("counting %s: %w", table, err)
	}
	report.Tables = append(report.Tables, TableCount{Table: table, Rows: count})
	report.Total += count
	logging.LogOperation(s.logger, "table_loaded",
		slog.String("table", table), slog.Int64("rows", count))
	return nil
}

// fetchIDMap runs a two-column (name, id) query and returns the mapping.
func (s *Store) fetchIDMap(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]int64)
	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		m[name] = id
	}
	return m, rows.Err()
}

func parseCSVFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	records, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// header maps column names to their positions in a CSV header row.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		h[strings.TrimSpace(name)] = i
	}
	return h, nil
}

func (h header) get(row []string, column string) (string, error) {
	i, ok := h[column]
	if !ok || i >= len(row) {
		return "", fmt.Errorf("missing column %q", column)
	}
	return row[i], nil
}

// ParseLines reads lines.csv records.
func ParseLines(r io.Reader) ([]LineRecord, error) {
	cr := csv.NewReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var records []LineRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		name, err := h.get(row, "line_name")
		if err != nil {
			return nil, err
		}
		vehicleType, err := h.get(row, "vehicle_type")
		if err != nil {
			return nil, err
		}
		records = append(records, LineRecord{LineName: name, VehicleType: vehicleType})
	}
	return records, nil
}

// ParseStops reads stops.csv records.
func ParseStops(r io.Reader) ([]StopRecord, error) {
	cr := csv.NewReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var records []StopRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		name, err := h.get(row, "stop_name")
		if err != nil {
			return nil, err
		}
		latStr, err := h.get(row, "latitude")
		if err != nil {
			return nil, err
		}
		lonStr, err := h.get(row, "longitude")
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude %q: %w", latStr, err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude %q: %w", lonStr, err)
		}
		records = append(records, StopRecord{StopName: name, Latitude: lat, Longitude: lon})
	}
	return records, nil
}

// ParseLineStops reads line_stops.csv records.
func ParseLineStops(r io.Reader) ([]LineStopRecord, error) {
	cr := csv.NewReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var records []LineStopRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lineName, err := h.get(row, "line_name")
		if err != nil {
			return nil, err
		}
		stopName, err := h.get(row, "stop_name")
		if err != nil {
			return nil, err
		}
		seqStr, err := h.get(row, "sequence")
		if err != nil {
			return nil, err
		}
		offsetStr, err := h.get(row, "time_offset")
		if err != nil {
			return nil, err
		}
		seq, err := strconv.Atoi(seqStr)
		if err != nil {
			return nil, fmt.Errorf("invalid sequence %q: %w", seqStr, err)
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, fmt.Errorf("invalid time_offset %q: %w", offsetStr, err)
		}
		records = append(records, LineStopRecord{
			LineName:   lineName,
			StopName:   stopName,
			Sequence:   seq,
			TimeOffset: offset,
		})
	}
	return records, nil
}

// ParseTrips reads trips.csv records.
func ParseTrips(r io.Reader) ([]TripRecord, error) {
	cr := csv.NewReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var records []TripRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		tripID, err := h.get(row, "trip_id")
		if err != nil {
			return nil, err
		}
		lineName, err := h.get(row, "line_name")
		if err != nil {
			return nil, err
		}
		departure, err := h.get(row, "scheduled_departure")
		if err != nil {
			return nil, err
		}
		vehicleID, err := h.get(row, "vehicle_id")
		if err != nil {
			return nil, err
		}
		records = append(records, TripRecord{
			TripID:             tripID,
			LineName:           lineName,
			ScheduledDeparture: departure,
			VehicleID:          vehicleID,
		})
	}
	return records, nil
}

// ParseStopEvents reads stop_events.csv records.
func ParseStopEvents(r io.Reader) ([]StopEventRecord, error) {
	cr := csv.NewReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var records []StopEventRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		tripID, err := h.get(row, "trip_id")
		if err != nil {
			return nil, err
		}
		stopName, err := h.get(row, "stop_name")
		if err != nil {
			return nil, err
		}
		scheduled, err := h.get(row, "scheduled")
		if err != nil {
			return nil, err
		}
		actual, err := h.get(row, "actual")
		if err != nil {
			return nil, err
		}
		onStr, err := h.get(row, "passengers_on")
		if err != nil {
			return nil, err
		}
		offStr, err := h.get(row, "passengers_off")
		if err != nil {
			return nil, err
		}
		on, err := strconv.Atoi(onStr)
		if err != nil {
			return nil, fmt.Errorf("invalid passengers_on %q: %w", onStr, err)
		}
		off, err := strconv.Atoi(offStr)
		if err != nil {
			return nil, fmt.Errorf("invalid passengers_off %q: %w", offStr, err)
		}
		records = append(records, StopEventRecord{
			TripID:        tripID,
			StopName:      stopName,
			Scheduled:     scheduled,
			Actual:        actual,
			PassengersOn:  on,
			PassengersOff: off,
		})
	}
	return records, nil
}
