package diagram

import (
	"errors"
	"fmt"
)

// Kind classifies why a diagram could not be drawn.
type Kind string

const (
	KindUnderdeterminedTriangle Kind = "UnderdeterminedTriangle"
	KindInconsistentAngles      Kind = "InconsistentAngles"
	KindDegenerateInequality    Kind = "DegenerateInequality"
	KindExpressionParse         Kind = "ExpressionParseError"
	KindInvalidRange            Kind = "InvalidRange"
	KindNegativeMeasure         Kind = "NegativeMeasure"
	KindUnknownTool             Kind = "UnknownTool"
	KindInvalidParameter        Kind = "InvalidParameter"
)

// Error lets a Kind act as a sentinel: errors.Is(err, KindInvalidRange) holds
// for any ValidationError or RenderError of that kind.
func (k Kind) Error() string { return string(k) }

// ValidationError is raised by Normalize when parameters break a tool's contract.
type ValidationError struct {
	Tool   Tool
	Field  string
	Kind   Kind
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s: %s", e.Tool, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s.%s: %s: %s", e.Tool, e.Field, e.Kind, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// RenderError is what the dispatcher hands back instead of a drawing.
type RenderError struct {
	Kind   Kind   `json:"kind"`
	Tool   Tool   `json:"toolName"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (e *RenderError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("render %s: %s: %s", e.Tool, e.Kind, e.Reason)
	}
	return fmt.Sprintf("render %s: %s (%s): %s", e.Tool, e.Kind, e.Field, e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// AsRenderError converts any error from the pipeline into a RenderError, keeping
// the kind and field of a ValidationError.
func AsRenderError(tool Tool, err error) *RenderError {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		return re
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &RenderError{Kind: ve.Kind, Tool: tool, Field: ve.Field, Reason: ve.Reason, Err: err}
	}
	return &RenderError{Kind: KindInvalidParameter, Tool: tool, Reason: err.Error(), Err: err}
}

// KindOf returns the kind carried by err, or "" for foreign errors.
func KindOf(err error) Kind {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

func invalid(tool Tool, field string, kind Kind, format string, args ...any) *ValidationError {
	return &ValidationError{Tool: tool, Field: field, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
