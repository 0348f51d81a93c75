package switcher

import (
	"fmt"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry exposes the functions in registry both by name and
// through call("name", args...).
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.functions = registry.Clone()
	}
}

type exprEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr. Snapshot
// bindings are type checked; other snapshot keys resolve at run time.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// exprEnvTemplate gives the checker the type of every binding a registry
// provides. Values are zero and never reach a program.
func exprEnvTemplate() map[string]any {
	return map[string]any{
		"now":            time.Time{},
		"args":           map[string]any{},
		"metadata":       map[string]any{},
		"candidate":      "",
		"elements":       map[string]any{},
		"active":         []any{},
		"active_count":   0,
		"allow_multiple": false,
		"any_active":     false,
		"registry_id":    "",
	}
}

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression, compileConfig{})
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, ctx.label(), err)
	}
	result, err := exprlang.Run(program, exprEnv(ctx))
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, ctx.label(), err)
	}
	return result, nil
}

func (e *exprEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	cfg := applyCompileOptions(opts)
	program, err := e.loadOrCompile(expression, cfg)
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, "", err)
	}
	return &exprCompiledRule{program: program, expression: expression, cfg: cfg}, nil
}

// cacheKey covers everything baked into a program: the function set and the
// result constraint.
func (e *exprEvaluator) cacheKey(expression string, cfg compileConfig) string {
	var b strings.Builder
	b.WriteString("expr:")
	b.WriteString(strings.Join(e.functions.Names(), ","))
	if cfg.requireBool {
		b.WriteString(":bool")
	}
	b.WriteString(":")
	b.WriteString(expression)
	return b.String()
}

func (e *exprEvaluator) loadOrCompile(expression string, cfg compileConfig) (*exprvm.Program, error) {
	key := e.cacheKey(expression, cfg)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(exprEnvTemplate()),
		exprlang.AllowUndefinedVariables(),
	}
	if cfg.requireBool {
		options = append(options, exprlang.AsBool())
	}
	options = append(options, e.functionOptions()...)
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *exprEvaluator) functionOptions() []exprlang.Option {
	if e.functions == nil {
		return nil
	}
	functions := e.functions
	options := []exprlang.Option{
		exprlang.Function("call", func(params ...any) (any, error) {
			if len(params) == 0 {
				return nil, fmt.Errorf("switcher: call requires a function name")
			}
			name, ok := params[0].(string)
			if !ok {
				return nil, fmt.Errorf("switcher: call name must be string, got %T", params[0])
			}
			return functions.Call(name, params[1:]...)
		}),
	}
	for _, name := range functions.Names() {
		fn := name
		options = append(options, exprlang.Function(fn, func(params ...any) (any, error) {
			return functions.Call(fn, params...)
		}))
	}
	return options
}

// exprEnv lays the snapshot over the context bindings. Context bindings win
// so a snapshot cannot shadow candidate or now.
func exprEnv(ctx RuleContext) map[string]any {
	snapshot := snapshotAsMap(ctx.Snapshot)
	env := make(map[string]any, len(snapshot)+4)
	for key, value := range snapshot {
		env[key] = value
	}
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	env["candidate"] = ctx.Candidate
	return env
}

type exprCompiledRule struct {
	program    *exprvm.Program
	expression string
	cfg        compileConfig
}

func (r *exprCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	result, err := exprlang.Run(r.program, exprEnv(ctx))
	if err == nil {
		err = r.cfg.requireBoolResult(result)
	}
	if err != nil {
		return nil, wrapEvaluationError("expr", r.expression, ctx.label(), err)
	}
	return result, nil
}
