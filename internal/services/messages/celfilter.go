package messagesvc

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/kittors/simple-message-service/internal/message"
)

// celFilter wraps a compiled CEL program evaluated against business frames.
// When disabled, Eval always returns true. System frames bypass filtering.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.IntType),
		cel.Variable("content", cel.StringType),
		cel.Variable("size", cel.IntType),
		cel.Variable("created_ms", cel.IntType),
		cel.Variable("from_cache", cel.BoolType),
		// Current time in ms for windowed filters
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against a frame. When disabled,
// returns true. Evaluation errors drop the frame for this subscriber only.
func (f celFilter) Eval(fr message.Frame) bool {
	if !f.enabled {
		return true
	}
	var createdMs int64
	if fr.CreatedAt != nil {
		createdMs = fr.CreatedAt.UnixMilli()
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":         int64(fr.ID),
		"content":    fr.Content,
		"size":       int64(len(fr.Content)),
		"created_ms": createdMs,
		"from_cache": fr.FromCache,
		"now_ms":     time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
