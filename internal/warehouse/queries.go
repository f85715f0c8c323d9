package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/YaoxuanLiu37/transitpapers/internal/logging"
)

// Query is one entry of the analytical catalog.
type Query struct {
	ID          string
	Description string
	SQL         string
}

// QueryResult is the JSON shape emitted for a catalog query.
type QueryResult struct {
	Query       string           `json:"query"`
	Description string           `json:"description"`
	Results     []map[string]any `json:"results"`
	Count       int              `json:"count"`
}

// QueryOrder is the canonical catalog execution order.
var QueryOrder = []string{"Q1", "Q2", "Q3", "Q4", "Q5", "Q6", "Q7", "Q8", "Q9", "Q10"}

// Catalog holds the ten analytical queries keyed by id.
var Catalog = map[string]Query{
	"Q1": {
		ID:          "Q1",
		Description: "List all stops on Route 20 in order",
		SQL: `
    SELECT s.stop_name, ls.sequence, ls.time_offset
    FROM lines l
    JOIN line_stops ls ON ls.line_id = l.line_id
    JOIN stops s       ON s.stop_id = ls.stop_id
    WHERE l.line_name = 'Route 20'
    ORDER BY ls.sequence;
    `,
	},
	"Q2": {
		ID:          "Q2",
		Description: "Trips during morning rush (07:00–09:00)",
		SQL: `
    SELECT t.trip_id, l.line_name, t.scheduled_departure
    FROM trips t
    JOIN lines l ON l.line_id = t.line_id
    WHERE (t.scheduled_departure::time >= TIME '07:00'
       AND t.scheduled_departure::time <  TIME '09:00')
    ORDER BY t.scheduled_departure, t.trip_id;
    `,
	},
	"Q3": {
		ID:          "Q3",
		Description: "Transfer stops (served by 2+ lines)",
		SQL: `
    SELECT
      s.stop_name,
      COUNT(DISTINCT l.line_id) AS line_count
    FROM stop_events se
    JOIN trips t ON t.trip_id = se.trip_id
    JOIN lines l ON l.line_id = t.line_id
    JOIN stops s ON s.stop_id = se.stop_id
    GROUP BY s.stop_name
    HAVING COUNT(DISTINCT l.line_id) >= 2
    ORDER BY line_count DESC, s.stop_name;
    `,
	},
	"Q4": {
		ID:          "Q4",
		Description: "Full ordered stop list for trip T0001",
		SQL: `
    SELECT ls.sequence, s.stop_name, ls.time_offset
    FROM trips t
    JOIN line_stops ls ON ls.line_id = t.line_id
    JOIN stops s       ON s.stop_id = ls.stop_id
    WHERE t.trip_id = 'T0001'
    ORDER BY ls.sequence;
    `,
	},
	"Q5": {
		ID:          "Q5",
		Description: "Lines that serve both 'Wilshire / Veteran' and 'Le Conte / Broxton'",
		SQL: `
    SELECT DISTINCT l.line_name
    FROM lines l
    JOIN line_stops ls ON ls.line_id = l.line_id
    WHERE ls.stop_id IN (SELECT stop_id FROM stops WHERE stop_name = 'Wilshire / Veteran')
      AND EXISTS (
        SELECT 1
        FROM line_stops ls2
        WHERE ls2.line_id = l.line_id
          AND ls2.stop_id IN (SELECT stop_id FROM stops WHERE stop_name = 'Le Conte / Broxton')
      )
    ORDER BY l.line_name;
    `,
	},
	"Q6": {
		ID:          "Q6",
		Description: "Average passengers per stop-event by line",
		SQL: `
    SELECT l.line_name,
           AVG((se.passengers_on + se.passengers_off)::NUMERIC) AS avg_passengers
    FROM stop_events se
    JOIN trips t ON t.trip_id = se.trip_id
    JOIN lines l ON l.line_id = t.line_id
    GROUP BY l.line_name
    ORDER BY l.line_name;
    `,
	},
	"Q7": {
		ID:          "Q7",
		Description: "Top 10 busiest stops (total activity)",
		SQL: `
    SELECT s.stop_name,
           SUM(se.passengers_on + se.passengers_off) AS total_activity
    FROM stop_events se
    JOIN stops s ON s.stop_id = se.stop_id
    GROUP BY s.stop_name
    ORDER BY total_activity DESC, s.stop_name
    LIMIT 10;
    `,
	},
	"Q8": {
		ID:          "Q8",
		Description: "Delay counts by line (> 2 minutes)",
		SQL: `
    SELECT l.line_name,
           COUNT(*) AS delay_count
    FROM stop_events se
    JOIN trips t ON t.trip_id = se.trip_id
    JOIN lines l ON l.line_id = t.line_id
    WHERE se.actual > se.scheduled + INTERVAL '2 minutes'
    GROUP BY l.line_name
    ORDER BY delay_count DESC, l.line_name;
    `,
	},
	"Q9": {
		ID:          "Q9",
		Description: "Trips with 3+ delayed stops (> 2 minutes)",
		SQL: `
    SELECT se.trip_id,
           COUNT(*) AS delayed_stop_count
    FROM stop_events se
    WHERE se.actual > se.scheduled + INTERVAL '2 minutes'
    GROUP BY se.trip_id
    HAVING COUNT(*) >= 3
    ORDER BY delayed_stop_count DESC, se.trip_id;
    `,
	},
	"Q10": {
		ID:          "Q10",
		Description: "Stops with above-average boardings (total_boardings)",
		SQL: `
    WITH per_stop AS (
      SELECT se.stop_id, SUM(se.passengers_on) AS total_boardings
      FROM stop_events se
      GROUP BY se.stop_id
    ),
    global_avg AS (
      SELECT AVG(total_boardings)::NUMERIC AS avg_boardings FROM per_stop
    )
    SELECT s.stop_name, p.total_boardings
    FROM per_stop p
    JOIN stops s ON s.stop_id = p.stop_id
    CROSS JOIN global_avg g
    WHERE p.total_boardings > g.avg_boardings
    ORDER BY p.total_boardings DESC, s.stop_name;
    `,
	},
}

// QueryIDs returns the catalog ids in canonical order.
func QueryIDs() []string {
	ids := make([]string, len(QueryOrder))
	copy(ids, QueryOrder)
	return ids
}

// RunQuery executes one catalog query and packages the rows with their
// column names preserved.
func (s *Store) RunQuery(ctx context.Context, id string) (*QueryResult, error) {
	q, ok := Catalog[id]
	if !ok {
		return nil, fmt.Errorf("unknown query %q", id)
	}

	rows, err := s.DB.QueryContext(ctx, q.SQL)
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", id, err)
	}
	defer rows.Close()

	results, err := rowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("reading %s results: %w", id, err)
	}

	logging.LogOperation(s.logger, "query_executed",
		slog.String("query", id), slog.Int("rows", len(results)))

	return &QueryResult{
		Query:       q.ID,
		Description: q.Description,
		Results:     results,
		Count:       len(results),
	}, nil
}

// RunAll executes the full catalog in canonical order.
func (s *Store) RunAll(ctx context.Context) ([]*QueryResult, error) {
	out := make([]*QueryResult, 0, len(QueryOrder))
	for _, id := range QueryOrder {
		res, err := s.RunQuery(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// rowsToMaps converts a result set into column-keyed maps. Byte slices
// become strings so JSON output stays readable.
func rowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
