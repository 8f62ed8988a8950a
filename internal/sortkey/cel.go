package sortkey

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// CompileCEL builds a Key from a CEL expression evaluated per node with the
// variables name (string), index (int) and depth (int). The expression may
// return a scalar, which is wrapped into a one-element tuple, or a list,
// which becomes the tuple itself.
//
// Example: "[depth, name]" sorts shallow nodes first, then by name.
func CompileCEL(expr string) (Key, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("index", cel.IntType),
		cel.Variable("depth", cel.IntType),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("sort key environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("sort key %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("sort key %q: %w", expr, err)
	}

	return func(name string, index, depth int) Tuple {
		out, _, err := prg.Eval(map[string]any{
			"name":  name,
			"index": index,
			"depth": depth,
		})
		if err != nil {
			// A failing key expression must not abort the sort; fall
			// back to selection order for this node.
			return Tuple{0, index}
		}
		return tupleFromCEL(out)
	}, nil
}

// tupleFromCEL converts a CEL result to a Tuple.
func tupleFromCEL(val ref.Val) Tuple {
	if lister, ok := val.(interface{ Value() any }); ok {
		switch elems := lister.Value().(type) {
		case []ref.Val:
			tuple := make(Tuple, 0, len(elems))
			for _, e := range elems {
				tuple = append(tuple, celScalar(e))
			}
			return tuple
		case []any:
			tuple := make(Tuple, 0, len(elems))
			for _, e := range elems {
				if rv, ok := e.(ref.Val); ok {
					tuple = append(tuple, celScalar(rv))
				} else {
					tuple = append(tuple, e)
				}
			}
			return tuple
		}
	}
	return Tuple{celScalar(val)}
}

// celScalar converts one CEL value to a comparable Go scalar.
func celScalar(val ref.Val) any {
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	}
	if valuer, ok := val.(interface{ Value() any }); ok {
		return valuer.Value()
	}
	return fmt.Sprint(val)
}
