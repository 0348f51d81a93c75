package switcher

import (
	"fmt"
	"time"
)

// RuleContext carries inputs needed when evaluating an expression against a
// registry.
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Candidate names the element whose activation is being checked. Empty
	// for plain queries.
	Candidate string
	// Registry labels errors and log events with the registry id.
	Registry string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) label() string {
	if ctx.Registry != "" {
		return ctx.Registry
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct {
	requireBool bool
}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// RequireBool makes the compiled rule fail unless the expression yields a
// bool. Engines that type check reject other result types at compile time.
func RequireBool() CompileOption {
	return compileOptionFunc(func(cfg *compileConfig) {
		cfg.requireBool = true
	})
}

func applyCompileOptions(opts []CompileOption) compileConfig {
	var cfg compileConfig
	for _, opt := range opts {
		if opt != nil {
			opt.applyCompileOption(&cfg)
		}
	}
	return cfg
}

// requireBoolResult checks value when cfg demands a bool.
func (cfg compileConfig) requireBoolResult(value any) error {
	if !cfg.requireBool {
		return nil
	}
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("%w: returned %T, want bool", ErrNonBoolResult, value)
	}
	return nil
}

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}
