package warehouse

import (
	"context"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/YaoxuanLiu37/transitpapers/internal/utils"
)

// Stop is a loaded stop with its surrogate id and coordinates.
type Stop struct {
	StopID    int64   `json:"stop_id"`
	StopName  string  `json:"stop_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbyStop is a stop annotated with its distance from a query point.
type NearbyStop struct {
	Stop
	DistanceMeters float64 `json:"distance_meters"`
}

// StopIndex answers radius queries over stops using an in-memory R-tree.
// The tree is immutable after construction; points are indexed as (lon, lat).
type StopIndex struct {
	tree rtree.RTreeG[Stop]
}

// NewStopIndex builds an index over the given stops.
func NewStopIndex(stops []Stop) *StopIndex {
	idx := &StopIndex{}
	for _, s := range stops {
		p := [2]float64{s.Longitude, s.Latitude}
		idx.tree.Insert(p, p, s)
	}
	return idx
}

// AllStops reads every stop from the warehouse, ordered by id.
func (s *Store) AllStops(ctx context.Context) ([]Stop, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT stop_id, stop_name, latitude, longitude
		FROM stops
		ORDER BY stop_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []Stop
	for rows.Next() {
		var st Stop
		if err := rows.Scan(&st.StopID, &st.StopName, &st.Latitude, &st.Longitude); err != nil {
			return nil, err
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

// Nearby returns all stops within radiusMeters of the point, nearest first.
// Candidates come from a bounding-box search and are filtered by exact
// distance, since the box necessarily over-covers the circle.
func (idx *StopIndex) Nearby(lat, lon, radiusMeters float64) []NearbyStop {
	bounds := utils.CalculateBounds(lat, lon, radiusMeters)

	var matches []NearbyStop
	idx.tree.Search(
		[2]float64{bounds.MinLon, bounds.MinLat},
		[2]float64{bounds.MaxLon, bounds.MaxLat},
		func(_, _ [2]float64, stop Stop) bool {
			d := utils.Distance(lat, lon, stop.Latitude, stop.Longitude)
			if d <= radiusMeters {
				matches = append(matches, NearbyStop{Stop: stop, DistanceMeters: d})
			}
			return true
		},
	)

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceMeters != matches[j].DistanceMeters {
			return matches[i].DistanceMeters < matches[j].DistanceMeters
		}
		return matches[i].StopID < matches[j].StopID
	})
	return matches
}

// Len reports the number of indexed stops.
func (idx *StopIndex) Len() int {
	return idx.tree.Len()
}
