package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openaq-archiver/internal/models"
	"openaq-archiver/internal/recordset"
)

func row(parameter string, value float64) recordset.Row {
	return recordset.Row{
		Measurement: models.Measurement{
			Timestamp: "2024-01-20T12:00:00",
			Value:     value,
			Parameter: parameter,
			SensorID:  1,
		},
	}
}

func TestCheckNegativeParticulateFails(t *testing.T) {
	report := NewChecker(nil, nil).Check([]recordset.Row{row("pm25", -3.2)})

	assert.False(t, report.OK())
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "pm25", report.Violations[0].Parameter)
	assert.Equal(t, -3.2, report.Violations[0].Value)
	assert.Equal(t, 0.0, report.Violations[0].Bound)
	assert.Equal(t, ReasonBelowBound, report.Violations[0].Reason)
}

func TestCheckTemperatureFloor(t *testing.T) {
	checker := NewChecker(nil, nil)

	assert.True(t, checker.Check([]recordset.Row{row("temp", -49.9)}).OK())
	assert.False(t, checker.Check([]recordset.Row{row("temp", -50.1)}).OK())
}

func TestCheckUnknownParameterDefaultsToNonNegative(t *testing.T) {
	checker := NewChecker(nil, nil)

	assert.True(t, checker.Check([]recordset.Row{row("no2", 8.1)}).OK())
	assert.False(t, checker.Check([]recordset.Row{row("no2", -0.1)}).OK())
}

func TestCheckAllValidPasses(t *testing.T) {
	rows := []recordset.Row{
		row("pm25", 12.1),
		row("humidity", 40),
		row("temp", -5),
	}

	report := NewChecker(nil, nil).Check(rows)

	assert.True(t, report.OK())
	assert.Equal(t, 3, report.RowCount)
	assert.Equal(t, recordset.Columns(), report.Columns)
	assert.Zero(t, report.NullRows)
	assert.Zero(t, report.UnparsableTimestamps)
	assert.Equal(t, map[string]int{"pm25": 1, "humidity": 1, "temp": 1}, report.CountsByParameter)
	assert.False(t, report.EarliestTimestamp.IsZero())
	assert.Equal(t, report.EarliestTimestamp, report.LatestTimestamp)
}

func TestCheckNullRowsAreInformational(t *testing.T) {
	rows := []recordset.Row{
		row("pm25", 12.1),
		{HasNulls: true},
	}

	report := NewChecker(nil, nil).Check(rows)

	assert.True(t, report.OK(), "null rows are counted, not fatal")
	assert.Equal(t, 1, report.NullRows)
}

func TestCheckNonFiniteValue(t *testing.T) {
	report := NewChecker(nil, nil).Check([]recordset.Row{row("pm25", math.NaN())})

	assert.False(t, report.OK())
	require.Len(t, report.Violations, 1)
	assert.Equal(t, ReasonNonFinite, report.Violations[0].Reason)
}

func TestCheckRegistryLabels(t *testing.T) {
	checker := NewChecker(nil, []string{"pm25", "temp"})

	report := checker.Check([]recordset.Row{
		row("pm25", 10),
		row("no2", 5),
	})

	assert.False(t, report.OK())
	assert.Empty(t, report.Violations)
	assert.Equal(t, map[string]int{"no2": 1}, report.UnknownParameters)
}

func TestCheckCustomBounds(t *testing.T) {
	checker := NewChecker(Bounds{"temp": -40}, nil)

	assert.False(t, checker.Check([]recordset.Row{row("temp", -45)}).OK())
}

func TestCheckUnparsableTimestamp(t *testing.T) {
	bad := row("pm25", 1)
	bad.Timestamp = "garbage"

	report := NewChecker(nil, nil).Check([]recordset.Row{bad})

	assert.True(t, report.OK())
	assert.Equal(t, 1, report.UnparsableTimestamps)
	assert.True(t, report.EarliestTimestamp.IsZero())
}

func TestCheckTimestampWithOffset(t *testing.T) {
	withOffset := row("pm25", 1)
	withOffset.Timestamp = "2024-01-20T12:00:00+01:00"

	report := NewChecker(nil, nil).Check([]recordset.Row{withOffset})

	assert.Zero(t, report.UnparsableTimestamps)
	assert.False(t, report.EarliestTimestamp.IsZero())
}

func TestClean(t *testing.T) {
	nullRow := recordset.Row{HasNulls: true}

	rows := []recordset.Row{
		row("pm25", 12.1),
		row("pm25", -3.2),
		row("temp", -5),
		row("temp", -60),
		nullRow,
	}

	cleaned := NewChecker(nil, nil).Clean(rows)

	require.Len(t, cleaned, 2)
	assert.Equal(t, "pm25", cleaned[0].Parameter)
	assert.Equal(t, 12.1, cleaned[0].Value)
	assert.Equal(t, "temp", cleaned[1].Parameter)
	assert.Equal(t, -5.0, cleaned[1].Value)
}
