package sql

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrUnknownFunction is returned when no built-in or catalog function
	// matches the given name and argument types.
	ErrUnknownFunction = errors.NewKind("unknown function %s(%s)")

	// ErrTypeMismatch is returned when two types have no common type or a
	// value cannot be coerced to the required type.
	ErrTypeMismatch = errors.NewKind("type mismatch: %s and %s are not compatible")

	// ErrArity is returned when a function or constructor receives a wrong
	// number of arguments.
	ErrArity = errors.NewKind("%s: wrong number of arguments, %s")

	// ErrObjectNotFound is returned when a table referenced by a query does
	// not exist in the catalog.
	ErrObjectNotFound = errors.NewKind("table not found: %s.%s")

	// ErrUnresolvedObject is returned when a view does not exist or has no
	// stored definition.
	ErrUnresolvedObject = errors.NewKind("cannot resolve view %s.%s: %s")

	// ErrColumnNotFound is returned when a column does not exist in any
	// relation visible from the current scope.
	ErrColumnNotFound = errors.NewKind("column %q could not be found in any table in scope")

	// ErrAmbiguousColumnName is returned when an unqualified column name is
	// present in more than one relation in scope.
	ErrAmbiguousColumnName = errors.NewKind("ambiguous column name %q, it's present in all these tables: %v")

	// ErrSchemaMismatch is returned when the converted body of a view does
	// not have the shape declared for it in the catalog.
	ErrSchemaMismatch = errors.NewKind("view %s: %s")

	// ErrRecursionLimitExceeded is returned when view expansion nests deeper
	// than the configured limit, usually because of a self-referencing view.
	ErrRecursionLimitExceeded = errors.NewKind("view expansion of %s exceeded max depth (%d)")

	// ErrInvalidNode is returned when an algebra node is constructed with
	// children or expressions that do not satisfy its invariants.
	ErrInvalidNode = errors.NewKind("invalid %s: %s")

	// ErrInvalidType is returned when a type string cannot be parsed or a
	// value does not belong to a type.
	ErrInvalidType = errors.NewKind("invalid type: %s")

	// ErrInvalidAggregation is returned when aggregate functions are used
	// where they are not allowed or columns are not grouped.
	ErrInvalidAggregation = errors.NewKind("invalid aggregation: %s")

	// ErrUnsupportedFeature is thrown when a feature is not already supported
	ErrUnsupportedFeature = errors.NewKind("unsupported feature: %s")

	// ErrCatalog wraps failures of the underlying catalog service.
	ErrCatalog = errors.NewKind("catalog error looking up %s: %s")
)
