package schemagen

import "errors"

// Sentinel errors returned by the generator.
var (
	// ErrUnsupportedSchema indicates a schema construct the generator cannot
	// express, such as a number-typed enum.
	ErrUnsupportedSchema = errors.New("unsupported schema")
	// ErrDuplicateIdentifier indicates a second declaration under an
	// identifier already present in the declaration graph.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrEmitFailed indicates the assembled source file could not be
	// rendered or formatted.
	ErrEmitFailed = errors.New("emit failed")
)
