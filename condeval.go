package deckfill

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// condEvaluator evaluates image-injection conditions against the current tag
// values. Compiled programs are cached per expression, as the same condition
// is re-evaluated once per loop iteration.
type condEvaluator struct {
	cache sync.Map // expression string → *vm.Program
}

var conditions condEvaluator

// EvalCondition evaluates a boolean expression against the tag map. The
// environment exposes each tag under its bare name ("Marque" for
// "[Marque]") and the full map as "tags". An empty condition is true.
func EvalCondition(condition string, tags TagMap) (bool, error) {
	if strings.TrimSpace(condition) == "" {
		return true, nil
	}
	env := conditionEnv(tags)
	program, err := conditions.compile(condition)
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", condition, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", condition, err)
	}
	if result == nil {
		return false, nil
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q evaluated to %T, expected bool", condition, result)
	}
	return b, nil
}

func (e *condEvaluator) compile(condition string) (*vm.Program, error) {
	if cached, ok := e.cache.Load(condition); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(condition, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.cache.Store(condition, program)
	return program, nil
}

// conditionEnv builds the evaluation environment from a tag map.
func conditionEnv(tags TagMap) map[string]any {
	env := make(map[string]any, len(tags)+1)
	for token, value := range tags {
		name := strings.TrimSuffix(strings.TrimPrefix(token, "["), "]")
		if name != "" {
			env[name] = value
		}
	}
	env["tags"] = map[string]string(tags)
	return env
}
