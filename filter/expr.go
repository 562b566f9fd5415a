package filter

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"

	"github.com/bixoto/bigbuy-go/bigbuy"
)

// dateLayouts are the date formats found in BigBuy catalog records
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// Compiler compiles expressions into filters over catalog records
type Compiler struct {
	helperFuncs map[string]any
	cache       *lruCache
	envPool     sync.Pool
}

// NewCompiler creates a new expr-based filter compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{helperFuncs: createHelperFunctions()}
	for _, opt := range opts {
		opt(c)
	}
	c.envPool.New = func() any {
		return make(map[string]any, 64)
	}
	return c
}

// Compile compiles an expression into an executable filter
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Record fields are only known at run time.
	program, err := expr.Compile(expression,
		expr.Env(c.compileEnvironment()),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &Filter{
		expression: expression,
		program:    program,
		compiler:   c,
	}
	if c.cache != nil {
		c.cache.Put(expression, filter)
	}
	return filter, nil
}

// Clear removes all cached filters
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

func (c *Compiler) compileEnvironment() map[string]any {
	env := make(map[string]any, len(c.helperFuncs)+2)
	maps.Copy(env, c.helperFuncs)
	env["hasField"] = func(string) bool { return false }
	env["Record"] = map[string]any{}
	return env
}

// environment builds the run time environment of one record. Helpers win
// over record fields of the same name; those stay reachable through Record.
func (c *Compiler) environment(record bigbuy.Record) map[string]any {
	env := c.envPool.Get().(map[string]any)
	maps.Copy(env, record)
	maps.Copy(env, c.helperFuncs)
	env["hasField"] = func(field string) bool {
		v, ok := record[field]
		return ok && v != nil
	}
	env["Record"] = map[string]any(record)
	return env
}

func (c *Compiler) release(env map[string]any) {
	clear(env)
	c.envPool.Put(env)
}

func createHelperFunctions() map[string]any {
	return map[string]any{
		"icontains": func(v any, substr string) bool {
			return strings.Contains(strings.ToLower(toString(v)), strings.ToLower(substr))
		},
		"str":       toString,
		"num":       toFloat,
		"parseDate": parseDate,
		"daysSince": func(t time.Time) int {
			if t.IsZero() {
				return 0
			}
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// toFloat reads numbers BigBuy sends either as JSON numbers or as strings.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

// parseDate returns the zero time for values it cannot read.
func parseDate(v any) time.Time {
	s := strings.TrimSpace(toString(v))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
