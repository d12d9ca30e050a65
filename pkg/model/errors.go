package model

import (
	"errors"
	"fmt"
)

// Field names used in RecordError.
const (
	FieldLocation              = "Location"
	FieldHealthyLifeExpectancy = "HealthyLifeExpectancy"
	FieldLifeExpectancy        = "LifeExpectancy"
	FieldRetirementAge         = "RetirementAge"
)

// Common errors.
var (
	ErrEmptyDataset      = errors.New("dataset has no renderable records")
	ErrMissingField      = errors.New("missing field")
	ErrNotNumeric        = errors.New("not a number")
	ErrDuplicateLocation = errors.New("duplicate location")
	ErrUnknownTarget     = errors.New("unknown selection target")
)

// LoadError reports that the input as a whole could not be read.
// Rendering must not proceed after a LoadError.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RecordError reports a single record that was skipped.
type RecordError struct {
	Line     int // 1-based data line, 0 when unknown
	Location string
	Field    string
	Err      error
}

func (e *RecordError) Error() string {
	where := "record"
	if e.Line > 0 {
		where = fmt.Sprintf("line %d", e.Line)
	}
	if e.Location != "" {
		where += fmt.Sprintf(" (%s)", e.Location)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %v", where, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
