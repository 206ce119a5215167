package payroll

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrPeriodNotFound        = errors.New("payroll period not found")
	ErrRunNotFound           = errors.New("payroll run not found")
	ErrRunInProgress         = errors.New("payroll run already in progress for period")
	ErrCircularReference     = errors.New("circular reference")
	ErrUnsupportedExpression = errors.New("unsupported expression")
	ErrDivisionByZero        = errors.New("division by zero")
)

// CircularReferenceError reports a component whose resolution chain revisits itself.
type CircularReferenceError struct {
	Code string
	Path []string
}

func (e *CircularReferenceError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Path) == 0 {
		return fmt.Sprintf("circular reference: %s", e.Code)
	}
	return fmt.Sprintf("circular reference: %s", strings.Join(e.Path, " -> "))
}

func (e *CircularReferenceError) Is(target error) bool { return target == ErrCircularReference }

// UnsupportedExpressionError is returned for any formula outside the arithmetic grammar.
type UnsupportedExpressionError struct {
	Expr   string
	Pos    int
	Reason string
}

func (e *UnsupportedExpressionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unsupported expression %q at offset %d: %s", e.Expr, e.Pos, e.Reason)
}

func (e *UnsupportedExpressionError) Is(target error) bool { return target == ErrUnsupportedExpression }

func unsupportedf(expr string, pos int, format string, args ...any) error {
	return &UnsupportedExpressionError{Expr: expr, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}
