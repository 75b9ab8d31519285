package importcheck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/hookfang/pkg/pysrc"
)

// Unknown enum labels encountered while decoding cached or serialized
// analysis results.
var (
	errUnknownReason  = errors.New("unknown violation reason")
	errUnknownOutcome = errors.New("unknown outcome kind")
)

// OutcomeKind classifies the analysis result for one file.
type OutcomeKind int

const (
	// OutcomeClean means every import sits at module top level or is exempt.
	OutcomeClean OutcomeKind = iota

	// OutcomeViolations means at least one nested import was reported.
	OutcomeViolations

	// OutcomeParseFailure means the file is not syntactically valid; it was
	// not scanned for violations.
	OutcomeParseFailure

	// OutcomeIOFailure means the file content could not be read or the
	// parse could not run. Never conflated with a parse failure or with a
	// clean result.
	OutcomeIOFailure
)

// String returns the outcome kind as a stable lowercase label.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeClean:
		return "clean"
	case OutcomeViolations:
		return "violations"
	case OutcomeParseFailure:
		return "parse-failure"
	case OutcomeIOFailure:
		return "io-failure"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OutcomeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "clean":
		*k = OutcomeClean
	case "violations":
		*k = OutcomeViolations
	case "parse-failure":
		*k = OutcomeParseFailure
	case "io-failure":
		*k = OutcomeIOFailure
	default:
		return fmt.Errorf("%w: %q", errUnknownOutcome, text)
	}

	return nil
}

// Reason states which scope kind disqualifies a nested import.
type Reason int

// Violation reasons, derived from the innermost enclosing scope frame.
const (
	NestedInFunction Reason = iota
	NestedInClass
	NestedInConditional
	NestedInExceptionHandler
)

// String returns the reason as a stable diagnostic code.
func (r Reason) String() string {
	switch r {
	case NestedInFunction:
		return "nested-in-function"
	case NestedInClass:
		return "nested-in-class"
	case NestedInConditional:
		return "nested-in-conditional"
	case NestedInExceptionHandler:
		return "nested-in-exception-handler"
	default:
		return "unknown"
	}
}

// scope returns the prose name of the disqualifying scope.
func (r Reason) scope() string {
	switch r {
	case NestedInFunction:
		return "function body"
	case NestedInClass:
		return "class body"
	case NestedInConditional:
		return "conditional block"
	case NestedInExceptionHandler:
		return "exception handler"
	default:
		return "nested scope"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	switch string(text) {
	case "nested-in-function":
		*r = NestedInFunction
	case "nested-in-class":
		*r = NestedInClass
	case "nested-in-conditional":
		*r = NestedInConditional
	case "nested-in-exception-handler":
		*r = NestedInExceptionHandler
	default:
		return fmt.Errorf("%w: %q", errUnknownReason, text)
	}

	return nil
}

// Violation is one import reported outside module top level. Immutable once
// created; at most one per import statement.
type Violation struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
	Reason Reason `json:"reason"`
}

// Message renders the violation as a single diagnostic sentence.
func (v Violation) Message() string {
	text, _, _ := strings.Cut(v.Text, "\n")

	return fmt.Sprintf("import nested in %s: %s", v.Reason.scope(), text)
}

// Failure carries the position and message of a parse failure, or the
// underlying error of an I/O failure.
type Failure struct {
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Outcome is the complete analysis result for one file. Failures are values
// here; one failing file never aborts a batch.
type Outcome struct {
	Path       string      `json:"path"`
	Kind       OutcomeKind `json:"kind"`
	Violations []Violation `json:"violations,omitempty"`
	Failure    *Failure    `json:"failure,omitempty"`
}

// IsClean reports whether the file passed with no findings and no failures.
func (o Outcome) IsClean() bool {
	return o.Kind == OutcomeClean
}

func cleanOutcome(path string) Outcome {
	return Outcome{Path: path, Kind: OutcomeClean}
}

func violationsOutcome(path string, violations []Violation) Outcome {
	if len(violations) == 0 {
		return cleanOutcome(path)
	}

	return Outcome{Path: path, Kind: OutcomeViolations, Violations: violations}
}

func parseFailureOutcome(path string, perr pysrc.ParseError) Outcome {
	return Outcome{
		Path: path,
		Kind: OutcomeParseFailure,
		Failure: &Failure{
			Line:    perr.Line,
			Column:  perr.Column,
			Message: perr.Message,
		},
	}
}

func ioFailureOutcome(path string, err error) Outcome {
	return Outcome{
		Path:    path,
		Kind:    OutcomeIOFailure,
		Failure: &Failure{Message: err.Error(), Err: err},
	}
}
