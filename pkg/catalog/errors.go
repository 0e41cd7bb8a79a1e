package catalog

import "fmt"

// ErrorCode names one of the error kinds the cache's error handling design
// distinguishes. It is a taxonomy, not a type hierarchy — every case is the
// same *Error struct tagged differently, dispatched on by callers that care.
type ErrorCode int

const (
	CodeInternal ErrorCode = iota
	CodeCatalogException
	CodeTableLoading
	CodeDatabaseNotFound
	CodeTableNotFound
	CodeAuthorization
	CodeAlreadyExists
	CodeInvalidOperation
	CodeUnsupportedOperation
)

func (c ErrorCode) String() string {
	switch c {
	case CodeInternal:
		return "InternalError"
	case CodeCatalogException:
		return "CatalogException"
	case CodeTableLoading:
		return "TableLoadingException"
	case CodeDatabaseNotFound:
		return "DatabaseNotFoundException"
	case CodeTableNotFound:
		return "TableNotFoundException"
	case CodeAuthorization:
		return "AuthorizationException"
	case CodeAlreadyExists:
		return "AlreadyExistsException"
	case CodeInvalidOperation:
		return "InvalidOperationException"
	case CodeUnsupportedOperation:
		return "UnsupportedOperation"
	default:
		return "UnknownError"
	}
}

// Error is the single error type carried by the cache and facade layers.
// Cause is preserved so errors.Is/errors.As keep working through
// TableLoadingException re-raises.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newErr(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func NewInternal(cause error, format string, args ...any) *Error {
	return newErr(CodeInternal, cause, format, args...)
}

func NewDatabaseNotFound(db string) *Error {
	return newErr(CodeDatabaseNotFound, nil, "database %q not found", db)
}

func NewTableNotFound(db, table string) *Error {
	return newErr(CodeTableNotFound, nil, "table %q not found in database %q", table, db)
}

// NewTableLoading wraps the original load failure for lazy re-raise from an
// INCOMPLETE table record.
func NewTableLoading(db, table string, cause error) *Error {
	return newErr(CodeTableLoading, cause, "table %q in database %q failed to load", table, db)
}

func NewAlreadyExists(kind Kind, db, name string) *Error {
	return newErr(CodeAlreadyExists, nil, "%s %q already exists in database %q", kind, name, db)
}

func NewInvalidOperation(format string, args ...any) *Error {
	return newErr(CodeInvalidOperation, nil, format, args...)
}

func NewUnsupportedOperation(format string, args ...any) *Error {
	return newErr(CodeUnsupportedOperation, nil, format, args...)
}

func NewAuthorization(format string, args ...any) *Error {
	return newErr(CodeAuthorization, nil, format, args...)
}

// ErrServiceIDChanged is the sole control-flow error the Update Reconciler
// raises: the incoming batch carries a ServiceID different from the one
// currently installed, past first boot. Callers MUST discard the batch and
// trigger a full resync; see reconciler.ApplyUpdate.
var ErrServiceIDChanged = &Error{
	Code:    CodeCatalogException,
	Message: "catalog service identity changed; full resync required",
}
