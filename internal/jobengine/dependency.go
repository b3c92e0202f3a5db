// Package jobengine implements the Job Engine: the state machine that
// advances jobs the Job Board surfaces as active, a dependency-expression
// evaluator, and resource reservation bookkeeping. Fair-share job
// assignment is done by the world facade (World.AIAssignJobs), not here.
//
// The dependency evaluator walks a small boolean expression tree
// (string leaves, all_of/any_of/not combinators) evaluated against
// completed-job history.
package jobengine

import "strings"

// IsJobTypeComplete reports whether at least one completed job of jobType
// exists, the predicate the dependency evaluator consults for leaf nodes.
type IsJobTypeComplete func(jobType string) bool

// EvaluateDependency walks a dependency expression tree and reports
// whether it is satisfied. Accepted shapes:
//
//	"job:<type>"                 -- leaf: a job of <type> has completed
//	[]any{...}                   -- bare list, shorthand for all_of
//	map{"all_of": [...]}         -- every sub-expression must hold
//	map{"any_of": [...]}         -- at least one sub-expression must hold
//	                                (an empty any_of list holds)
//	map{"not": expr}             -- expr must not hold
//
// A nil expression (no dependencies) is always satisfied.
func EvaluateDependency(expr any, complete IsJobTypeComplete) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case string:
		return complete(strings.TrimPrefix(e, "job:"))
	case []any:
		return evaluateAll(e, complete)
	case map[string]any:
		if v, ok := e["all_of"]; ok {
			if list, ok := v.([]any); ok {
				return evaluateAll(list, complete)
			}
			return EvaluateDependency(v, complete)
		}
		if v, ok := e["any_of"]; ok {
			if list, ok := v.([]any); ok {
				return evaluateAny(list, complete)
			}
			return EvaluateDependency(v, complete)
		}
		if v, ok := e["not"]; ok {
			return !EvaluateDependency(v, complete)
		}
		return false
	default:
		return false
	}
}

func evaluateAll(exprs []any, complete IsJobTypeComplete) bool {
	for _, e := range exprs {
		if !EvaluateDependency(e, complete) {
			return false
		}
	}
	return true
}

func evaluateAny(exprs []any, complete IsJobTypeComplete) bool {
	for _, e := range exprs {
		if EvaluateDependency(e, complete) {
			return true
		}
	}
	return len(exprs) == 0
}
