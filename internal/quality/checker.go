// Package quality validates stored record sets against structural and
// physical-plausibility rules.
package quality

import (
	"math"
	"time"

	"openaq-archiver/internal/models"
	"openaq-archiver/internal/recordset"
)

// Bounds maps a parameter label to the minimum physically plausible value.
// Parameters without an entry default to a zero minimum (the non-negative
// class), so only exemptions like temperature need to be listed.
type Bounds map[string]float64

func DefaultBounds() Bounds {
	return Bounds{
		"pm25":     0,
		"pm10":     0,
		"humidity": 0,
		"temp":     -50,
	}
}

const (
	ReasonBelowBound = "below_bound"
	ReasonNonFinite  = "non_finite"
)

// Violation is one fatal plausibility failure.
type Violation struct {
	RowIndex  int
	Parameter string
	Value     float64
	Bound     float64
	Reason    string
}

// Report is the outcome of checking one record set. Structural findings
// (row count, nulls, time range) are informational; Violations and
// UnknownParameters decide pass/fail.
type Report struct {
	RowCount             int
	Columns              []string
	NullRows             int
	EarliestTimestamp    time.Time
	LatestTimestamp      time.Time
	UnparsableTimestamps int
	CountsByParameter    map[string]int
	UnknownParameters    map[string]int
	Violations           []Violation
}

func (report Report) OK() bool {
	return len(report.Violations) == 0 && len(report.UnknownParameters) == 0
}

// Checker applies a plausibility bounds table and, when a registry label set
// is supplied, the rule that every record's parameter must be a known label.
type Checker struct {
	bounds Bounds
	labels map[string]struct{}
}

// NewChecker builds a checker. A nil bounds table means DefaultBounds; a nil
// label list disables the registry membership check.
func NewChecker(bounds Bounds, labels []string) *Checker {
	if bounds == nil {
		bounds = DefaultBounds()
	}

	checker := &Checker{bounds: bounds}

	if labels != nil {
		checker.labels = make(map[string]struct{}, len(labels))
		for _, label := range labels {
			checker.labels[label] = struct{}{}
		}
	}

	return checker
}

func (checker *Checker) minimum(parameter string) float64 {
	if bound, ok := checker.bounds[parameter]; ok {
		return bound
	}
	return 0
}

// Check runs the structural and physical passes over a loaded record set.
func (checker *Checker) Check(rows []recordset.Row) Report {
	report := Report{
		RowCount:          len(rows),
		Columns:           recordset.Columns(),
		CountsByParameter: make(map[string]int),
		UnknownParameters: make(map[string]int),
	}

	for i, row := range rows {
		if row.Parameter != "" {
			report.CountsByParameter[row.Parameter]++
		}

		if row.Timestamp == "" {
			// Null timestamps are already accounted for as null rows.
			if !row.HasNulls {
				report.UnparsableTimestamps++
			}
		} else if ts, err := parseTimestamp(row.Timestamp); err != nil {
			report.UnparsableTimestamps++
		} else {
			if report.EarliestTimestamp.IsZero() || ts.Before(report.EarliestTimestamp) {
				report.EarliestTimestamp = ts
			}
			if report.LatestTimestamp.IsZero() || ts.After(report.LatestTimestamp) {
				report.LatestTimestamp = ts
			}
		}

		if row.HasNulls {
			// Counted and later dropped by Clean; never bound-checked.
			report.NullRows++
			continue
		}

		if checker.labels != nil {
			if _, known := checker.labels[row.Parameter]; !known {
				report.UnknownParameters[row.Parameter]++
			}
		}

		if math.IsNaN(row.Value) || math.IsInf(row.Value, 0) {
			report.Violations = append(report.Violations, Violation{
				RowIndex:  i,
				Parameter: row.Parameter,
				Value:     row.Value,
				Reason:    ReasonNonFinite,
			})
			continue
		}

		if bound := checker.minimum(row.Parameter); row.Value < bound {
			report.Violations = append(report.Violations, Violation{
				RowIndex:  i,
				Parameter: row.Parameter,
				Value:     row.Value,
				Bound:     bound,
				Reason:    ReasonBelowBound,
			})
		}
	}

	return report
}

// Clean returns the records that survive the quality rules: null rows,
// non-finite values and below-bound values are dropped.
func (checker *Checker) Clean(rows []recordset.Row) []models.Measurement {
	cleaned := make([]models.Measurement, 0, len(rows))

	for _, row := range rows {
		if row.HasNulls {
			continue
		}
		if math.IsNaN(row.Value) || math.IsInf(row.Value, 0) {
			continue
		}
		if row.Value < checker.minimum(row.Parameter) {
			continue
		}

		cleaned = append(cleaned, row.Measurement)
	}

	return cleaned
}

// Station-local timestamps arrive with or without a zone offset.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseTimestamp(value string) (time.Time, error) {
	var firstErr error

	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return time.Time{}, firstErr
}
