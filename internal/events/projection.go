package events

import "time"

// ProjectionStart is emitted before compiling a field's selection set.
type ProjectionStart struct {
	Query         string
	OperationName string
	FieldName     string
	TypeName      string
	Aggregate     bool
}

// ProjectionFinish is emitted after compiling a field's selection set.
type ProjectionFinish struct {
	Query         string
	OperationName string
	FieldName     string
	TypeName      string
	Aggregate     bool
	Err           error
	Duration      time.Duration
}
