// Package inspect decodes IDs and filters them with CEL expressions over
// their fields, e.g. `generator_id == 3 && ts_ms > now_ms - 60000`.
package inspect

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// Filter wraps a compiled CEL program. The zero value and filters built
// from an empty expression match everything.
type Filter struct {
	prog    cel.Program
	enabled bool
	now     func() time.Time
}

// NewFilter compiles expr. The expression must evaluate to a bool and may
// reference ts_ms, generator_id, cluster_id, sequence and now_ms.
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("ts_ms", cel.IntType),
		cel.Variable("generator_id", cel.IntType),
		cel.Variable("cluster_id", cel.IntType),
		cel.Variable("sequence", cel.IntType),
		// Current time in ms for windowed filters
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, fmt.Errorf("inspect: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return Filter{}, fmt.Errorf("inspect: filter must evaluate to bool, got %s", ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true, now: time.Now}, nil
}

// Match evaluates the filter against decoded fields. Evaluation errors do
// not match.
func (f Filter) Match(fields uniqueid.Fields) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"ts_ms":        fields.Timestamp,
		"generator_id": int64(fields.GeneratorID),
		"cluster_id":   int64(fields.ClusterID),
		"sequence":     int64(fields.Sequence),
		"now_ms":       f.now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// Decoded pairs an ID with its fields.
type Decoded struct {
	ID     uniqueid.ID
	Fields uniqueid.Fields
}

// DecodeAll parses hex IDs and returns those matching f, preserving input
// order. The first malformed ID aborts with an error.
func DecodeAll(hexIDs []string, f Filter) ([]Decoded, error) {
	out := make([]Decoded, 0, len(hexIDs))
	for _, s := range hexIDs {
		id, err := uniqueid.ParseHex(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		fields := uniqueid.Decode(id)
		if f.Match(fields) {
			out = append(out, Decoded{ID: id, Fields: fields})
		}
	}
	return out, nil
}
