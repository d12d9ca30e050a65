// Package model defines the dataset behind the life expectancy chart.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Record is one location's row in the dataset.
type Record struct {
	Location              string  `json:"location"`
	HealthyLifeExpectancy float64 `json:"healthy_life_expectancy"`
	LifeExpectancy        float64 `json:"life_expectancy"`
	RetirementAge         float64 `json:"retirement_age"`
}

// Span returns LifeExpectancy - HealthyLifeExpectancy.
func (r Record) Span() float64 {
	return r.LifeExpectancy - r.HealthyLifeExpectancy
}

// Validate checks the fields a chart needs to place the record.
// An inverted range is not an error; callers may warn about it.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return &RecordError{Field: FieldLocation, Err: ErrMissingField}
	}
	return nil
}

// Inverted reports whether the healthy value exceeds the total value.
func (r Record) Inverted() bool {
	return r.HealthyLifeExpectancy > r.LifeExpectancy
}

func (r Record) String() string {
	return fmt.Sprintf("%s [%.1f..%.1f] retire %.1f",
		r.Location, r.HealthyLifeExpectancy, r.LifeExpectancy, r.RetirementAge)
}

// Dataset is an ordered, immutable list of records. Order is input order.
type Dataset struct {
	records []Record
	index   map[string]int
}

// NewDataset builds a dataset from records in the given order.
// Duplicate locations are rejected.
func NewDataset(records []Record) (Dataset, error) {
	ds := Dataset{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for i, r := range records {
		if _, dup := ds.index[r.Location]; dup {
			return Dataset{}, &RecordError{
				Line:     i + 1,
				Location: r.Location,
				Field:    FieldLocation,
				Err:      ErrDuplicateLocation,
			}
		}
		ds.index[r.Location] = len(ds.records)
		ds.records = append(ds.records, r)
	}
	return ds, nil
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.records) }

// Records returns a copy of the records in dataset order.
func (d Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// At returns the i-th record.
func (d Dataset) At(i int) Record { return d.records[i] }

// Lookup finds a record by location.
func (d Dataset) Lookup(location string) (Record, bool) {
	i, ok := d.index[location]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

// Locations returns the location labels in dataset order.
func (d Dataset) Locations() []string {
	out := make([]string, len(d.records))
	for i, r := range d.records {
		out[i] = r.Location
	}
	return out
}

// SortedByLocation returns a new dataset ordered alphabetically by location.
func (d Dataset) SortedByLocation() Dataset {
	recs := d.Records()
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Location < recs[j].Location
	})
	sorted, _ := NewDataset(recs) // locations already unique
	return sorted
}
