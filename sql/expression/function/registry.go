package function

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-hive2rel.v0/sql"
	"gopkg.in/src-d/go-hive2rel.v0/sql/expression"
)

// ErrFunctionAlreadyRegistered is returned when registering a built-in whose
// name is already taken.
var ErrFunctionAlreadyRegistered = errors.NewKind("function %s is already registered")

// DefaultUDFReturnType is the return type of catalog functions that do not
// declare one.
var DefaultUDFReturnType = sql.Varchar

// Resolution is the outcome of resolving a function call.
type Resolution struct {
	Function *sql.Function
	Type     sql.Type
	Nullable bool
	// Placeholder is set when the result type could not be inferred from
	// the arguments and PlaceholderType was used instead.
	Placeholder bool
}

// Call builds the call expression of the resolution.
func (r *Resolution) Call(args ...sql.Expression) *expression.Call {
	return expression.NewCall(r.Function, r.Type, r.Nullable, args...)
}

type placeholderRule interface {
	IsPlaceholder(args []sql.Expression) bool
}

// Registry resolves function names and argument types to functions. The
// built-ins are fixed after creation; catalog functions are resolved lazily
// the first time they are called and kept for the life of the registry.
// A Registry is safe for concurrent use.
type Registry struct {
	catalog  sql.Catalog
	builtins map[string]*sql.Function

	mu    sync.RWMutex
	udfs  map[string]*udfEntry
	group singleflight.Group
}

// NewRegistry creates a registry with the default built-ins that resolves
// user functions with the given catalog.
func NewRegistry(catalog sql.Catalog, extra ...*sql.Function) (*Registry, error) {
	r := &Registry{
		catalog:  catalog,
		builtins: make(map[string]*sql.Function, len(Defaults)+len(extra)),
		udfs:     make(map[string]*udfEntry),
	}

	for _, fn := range append(append([]*sql.Function{}, Defaults...), extra...) {
		name := strings.ToLower(fn.Name)
		if _, ok := r.builtins[name]; ok {
			return nil, ErrFunctionAlreadyRegistered.New(fn.Name)
		}
		r.builtins[name] = fn
	}
	return r, nil
}

// Builtin returns the built-in function with the given name.
func (r *Registry) Builtin(name string) (*sql.Function, bool) {
	name = strings.ToLower(name)
	if alias, ok := aliases[name]; ok {
		name = alias
	}

	fn, ok := r.builtins[name]
	return fn, ok
}

// Resolve finds the function to call for the given name and arguments. An
// exact built-in match is preferred to a match after coercing the argument
// types, and built-ins are preferred to user functions of the catalog,
// which are looked up in the given database.
func (r *Registry) Resolve(ctx context.Context, db, name string, args []sql.Expression) (*Resolution, error) {
	types := argTypes(args)
	if fn, ok := r.Builtin(name); ok {
		res, err := resolveBuiltin(fn, types, args)
		if err != nil || res != nil {
			return res, err
		}
	}

	udf, err := r.udf(ctx, db, strings.ToLower(name))
	if err != nil {
		return nil, err
	}

	if udf == nil || !udf.entry.AcceptsArity(len(args)) {
		return nil, sql.ErrUnknownFunction.New(name, sql.TypesString(types))
	}

	return &Resolution{
		Function: udf.fn,
		Type:     udf.typ,
		Nullable: true,
	}, nil
}

func resolveBuiltin(fn *sql.Function, types []sql.Type, args []sql.Expression) (*Resolution, error) {
	for _, coerce := range []bool{false, true} {
		for _, s := range fn.Signatures {
			if !s.Match(types, coerce) {
				continue
			}

			typ, err := s.Return.ReturnType(args)
			if err != nil {
				return nil, err
			}

			res := &Resolution{
				Function: fn,
				Type:     typ,
				Nullable: nullable(s.Nulls, args),
			}

			if p, ok := s.Return.(placeholderRule); ok && p.IsPlaceholder(args) {
				res.Placeholder = true
				res.Nullable = true
			}
			return res, nil
		}
	}
	return nil, nil
}

func nullable(p sql.NullPolicy, args []sql.Expression) bool {
	switch p {
	case sql.NeverNull:
		return false
	case sql.AlwaysNullable:
		return true
	}

	for _, a := range args {
		if a.IsNullable() {
			return true
		}
	}
	return false
}

type udfEntry struct {
	fn    *sql.Function
	entry *sql.FunctionEntry
	typ   sql.Type
}

// udf returns the catalog function with the given name, or nil if there is
// none. Found functions are registered once and reused.
func (r *Registry) udf(ctx context.Context, db, name string) (*udfEntry, error) {
	if r.catalog == nil {
		return nil, nil
	}

	key := strings.ToLower(db) + "." + name
	r.mu.RLock()
	udf, ok := r.udfs[key]
	r.mu.RUnlock()
	if ok {
		return udf, nil
	}

	// The lookup is shared by every caller waiting on the key, so it must
	// not be cancelled along with the one that started it.
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.register(context.WithoutCancel(ctx), key, db, name)
	})
	if err != nil || v == nil {
		return nil, err
	}
	return v.(*udfEntry), nil
}

func (r *Registry) register(ctx context.Context, key, db, name string) (interface{}, error) {
	r.mu.RLock()
	udf, ok := r.udfs[key]
	r.mu.RUnlock()
	if ok {
		return udf, nil
	}

	entry, ok, err := r.catalog.LookupFunction(ctx, db, name)
	if err != nil {
		return nil, sql.ErrCatalog.Wrap(err, db+"."+name, err.Error())
	}

	if !ok {
		return nil, nil
	}

	udf = newCatalogFunction(entry)
	r.mu.Lock()
	r.udfs[key] = udf
	r.mu.Unlock()
	return udf, nil
}

func newCatalogFunction(e *sql.FunctionEntry) *udfEntry {
	typ := e.ReturnType
	if typ == nil {
		typ = DefaultUDFReturnType
	}

	return &udfEntry{
		fn: &sql.Function{
			Name:    strings.ToLower(e.Name),
			Display: e.Name,
			Kind:    sql.CatalogFunction,
			Class:   e.Class,
		},
		entry: e,
		typ:   typ,
	}
}

// Cast builds a cast of the expression to the given type. Casting to the
// same type returns the expression unchanged.
func (r *Registry) Cast(e sql.Expression, to sql.Type) (sql.Expression, error) {
	if e.Type().Equals(to) {
		return e, nil
	}

	if !sql.CanCast(e.Type(), to) {
		return nil, sql.ErrTypeMismatch.New(e.Type(), to)
	}
	return expression.NewCall(Cast, to, e.IsNullable(), e), nil
}

// GetField builds the access to a field of a struct expression.
func (r *Registry) GetField(e sql.Expression, field string) (sql.Expression, error) {
	if st, ok := e.Type().(sql.StructType); ok {
		if idx := st.FieldIndex(field); idx >= 0 {
			field = st.Fields[idx].Name
		}
	}

	args := []sql.Expression{e, expression.NewLiteral(field, sql.Varchar)}
	t, err := fieldRule(args)
	if err != nil {
		return nil, err
	}
	return expression.NewCall(Field, t, true, args...), nil
}
