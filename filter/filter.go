// Package filter selects BigBuy catalog records with expr-lang expressions.
//
// Record fields are available as variables (`wholesalePrice > 10`), and
// through Record for field names that are not identifiers. Besides the expr
// builtins, expressions can call:
//
//	icontains(v, s)  case-insensitive substring test
//	hasField(name)   the record has a non-null field name
//	str(v), num(v)   convert loosely typed values
//	parseDate(v)     parse "2006-01-02 15:04:05" and similar dates
//	daysSince(t), daysAgo(n)
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bixoto/bigbuy-go/bigbuy"
)

var defaultCompiler = NewCompiler(WithCache(128))

// Filter is a compiled expression. It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
	compiler   *Compiler
}

// Compile compiles expression with the shared, caching compiler
func Compile(expression string) (*Filter, error) {
	return defaultCompiler.Compile(expression)
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

// Match reports whether record satisfies the filter
func (f *Filter) Match(record bigbuy.Record) (bool, error) {
	env := f.compiler.environment(record)
	defer f.compiler.release(env)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, RecordID: record["id"], Err: err}
	}
	// Undefined fields compile as unknown types, so the result is checked here too.
	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: f.expression,
			RecordID:   record["id"],
			Err:        fmt.Errorf("expected bool, got %T", result),
		}
	}
	return matched, nil
}

// Apply returns the records matching the filter, in their original order.
// It stops at the first record the filter cannot be evaluated on.
func (f *Filter) Apply(records []bigbuy.Record) ([]bigbuy.Record, error) {
	var matches []bigbuy.Record
	for _, record := range records {
		ok, err := f.Match(record)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, record)
		}
	}
	return matches, nil
}
