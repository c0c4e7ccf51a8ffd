package source

import (
	"errors"
	"fmt"
)

// LoadErrorKind classifies why a source could not be loaded.
type LoadErrorKind string

const (
	KindUnreadable  LoadErrorKind = "unreadable"
	KindEncoding    LoadErrorKind = "encoding"
	KindUnreachable LoadErrorKind = "unreachable"
	KindNoTables    LoadErrorKind = "no_tables"
	KindQuery       LoadErrorKind = "query"
)

// ErrNoTablesFound is matched by errors.Is when a database has no tables and
// neither a table nor a query was given.
var ErrNoTablesFound = errors.New("no tables found in the database")

// LoadError means a source could not be read into a table.
type LoadError struct {
	Kind   LoadErrorKind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError means a structured file is malformed and no fallback could read it.
type ParseError struct {
	Source string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s as %s: %v", e.Source, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError indicates a connection string outside the accepted backend families.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func loadErr(kind LoadErrorKind, src string, err error) *LoadError {
	return &LoadError{Kind: kind, Source: src, Err: err}
}
