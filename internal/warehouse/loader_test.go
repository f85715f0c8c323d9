package warehouse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLines(t *testing.T) {
	input := "line_name,vehicle_type\nRoute 20,bus\nExpo Line,rail\n"
	records, err := ParseLines(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, LineRecord{LineName: "Route 20", VehicleType: "bus"}, records[0])
	assert.Equal(t, LineRecord{LineName: "Expo Line", VehicleType: "rail"}, records[1])
}

func TestParseLinesHeaderOrderIndependent(t *testing.T) {
	input := "vehicle_type,line_name\nbus,Route 20\n"
	records, err := ParseLines(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Route 20", records[0].LineName)
	assert.Equal(t, "bus", records[0].VehicleType)
}

func TestParseLinesMissingColumn(t *testing.T) {
	input := "line_name\nRoute 20\n"
	_, err := ParseLines(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vehicle_type")
}

func TestParseStops(t *testing.T) {
	input := "stop_name,latitude,longitude\nWilshire / Veteran,34.0561,-118.4488\n"
	records, err := ParseStops(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Wilshire / Veteran", records[0].StopName)
	assert.InDelta(t, 34.0561, records[0].Latitude, 1e-9)
	assert.InDelta(t, -118.4488, records[0].Longitude, 1e-9)
}

func TestParseStopsBadCoordinate(t *testing.T) {
	input := "stop_name,latitude,longitude\nBad Stop,not-a-number,-118.4\n"
	_, err := ParseStops(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
}

func TestParseLineStops(t *testing.T) {
	input := "line_name,stop_name,sequence,time_offset\nRoute 20,Wilshire / Veteran,1,0\nRoute 20,Le Conte / Broxton,2,4\n"
	records, err := ParseLineStops(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Sequence)
	assert.Equal(t, 4, records[1].TimeOffset)
}

func TestParseTrips(t *testing.T) {
	input := "trip_id,line_name,scheduled_departure,vehicle_id\nT0001,Route 20,2025-03-10 07:15:00,V101\n"
	records, err := ParseTrips(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "T0001", records[0].TripID)
	assert.Equal(t, "Route 20", records[0].LineName)
	assert.Equal(t, "2025-03-10 07:15:00", records[0].ScheduledDeparture)
	assert.Equal(t, "V101", records[0].VehicleID)
}

func TestParseStopEvents(t *testing.T) {
	input := "trip_id,stop_name,scheduled,actual,passengers_on,passengers_off\n" +
		"T0001,Wilshire / Veteran,2025-03-10 07:15:00,2025-03-10 07:18:30,12,3\n"
	records, err := ParseStopEvents(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 12, records[0].PassengersOn)
	assert.Equal(t, 3, records[0].PassengersOff)
}

func TestResolveLineStopsSkipsUnknownNames(t *testing.T) {
	lineIDs := map[string]int64{"Route 20": 1}
	stopIDs := map[string]int64{"Wilshire / Veteran": 7}

	records := []LineStopRecord{
		{LineName: "Route 20", StopName: "Wilshire / Veteran", Sequence: 1, TimeOffset: 0},
		{LineName: "Route 99", StopName: "Wilshire / Veteran", Sequence: 1, TimeOffset: 0},
		{LineName: "Route 20", StopName: "Nowhere", Sequence: 2, TimeOffset: 5},
	}

	rows, skipped := ResolveLineStops(records, lineIDs, stopIDs)
	assert.Equal(t, 2, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{int64(1), int64(7), 1, 0}, rows[0])
}

func TestResolveTripsSkipsUnknownLines(t *testing.T) {
	lineIDs := map[string]int64{"Route 20": 1}

	records := []TripRecord{
		{TripID: "T0001", LineName: "Route 20", ScheduledDeparture: "2025-03-10 07:15:00", VehicleID: "V101"},
		{TripID: "T0002", LineName: "Ghost Line", ScheduledDeparture: "2025-03-10 08:00:00", VehicleID: "V102"},
	}

	rows, skipped := ResolveTrips(records, lineIDs)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, "T0001", rows[0][0])
}

func TestResolveStopEventsSkipsUnknownStops(t *testing.T) {
	stopIDs := map[string]int64{"Wilshire / Veteran": 7}

	records := []StopEventRecord{
		{TripID: "T0001", StopName: "Wilshire / Veteran", Scheduled: "a", Actual: "b", PassengersOn: 1, PassengersOff: 2},
		{TripID: "T0001", StopName: "Nowhere", Scheduled: "a", Actual: "b", PassengersOn: 1, PassengersOff: 2},
	}

	rows, skipped := ResolveStopEvents(records, stopIDs)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 1)
}

func TestBuildMultiInsertPlaceholders(t *testing.T) {
	rows := [][]any{
		{"Route 20", "bus"},
		{"Expo Line", "rail"},
	}
	query, args := buildMultiInsert("lines", []string{"line_name", "vehicle_type"},
		"ON CONFLICT (line_name) DO NOTHING", rows)

	assert.Equal(t,
		"INSERT INTO lines (line_name, vehicle_type) VALUES ($1, $2), ($3, $4) ON CONFLICT (line_name) DO NOTHING",
		query)
	assert.Equal(t, []any{"Route 20", "bus", "Expo Line", "rail"}, args)
}

func TestBuildMultiInsertNoConflictClause(t *testing.T) {
	rows := [][]any{{"A", 1.0, 2.0}}
	query, args := buildMultiInsert("stops", []string{"stop_name", "latitude", "longitude"}, "", rows)

	assert.Equal(t, "INSERT INTO stops (stop_name, latitude, longitude) VALUES ($1, $2, $3)", query)
	assert.Len(t, args, 3)
}
