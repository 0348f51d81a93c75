package switcher

import (
	"strings"

	"github.com/goliatone/go-switcher/pkg/activity"
)

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	activateAll    bool
	deactivateAll  bool
	allowMultiple  bool
	warnings       WarningLogger
	evaluator      Evaluator
	evalLogger     EvaluatorLogger
	programCache   ProgramCache
	functions      *FunctionRegistry
	activationRule string
	activityHooks  activity.Hooks
	activityConfig *activity.Config
	errs           []error
}

func applyOptions(opts []Option) registryConfig {
	cfg := registryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.warnings == nil {
		cfg.warnings = defaultWarningLogger()
	}
	if cfg.evalLogger == nil {
		cfg.evalLogger = noopEvaluatorLogger{}
	}
	return cfg
}

// WithActivateAll activates every element once the registry is populated.
// It only takes effect in multiple mode; otherwise a warning is logged.
func WithActivateAll() Option {
	return func(cfg *registryConfig) {
		cfg.activateAll = true
	}
}

// WithDeactivateAll deactivates every unpinned element once the registry is
// populated.
func WithDeactivateAll() Option {
	return func(cfg *registryConfig) {
		cfg.deactivateAll = true
	}
}

// WithAllowMultiple toggles multiple active elements.
func WithAllowMultiple(allow bool) Option {
	return func(cfg *registryConfig) {
		cfg.allowMultiple = allow
	}
}

// WithWarningLogger routes registry and element warnings to logger. A nil
// logger discards them.
func WithWarningLogger(logger WarningLogger) Option {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.warnings = noopWarningLogger{}
			return
		}
		cfg.warnings = logger
	}
}

// WithEvaluator configures the evaluator used by Evaluate and by the
// activation rule. A nil evaluator keeps the expr-lang default. A custom
// evaluator ignores WithProgramCache and WithFunctionRegistry; configure it
// through its own options instead.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *registryConfig) {
		cfg.evaluator = e
	}
}

// WithActivationRule gates Activate, and pinning of inactive elements,
// behind expression. The expression sees the registry snapshot plus
// `candidate` and must return a bool.
func WithActivationRule(expression string) Option {
	return func(cfg *registryConfig) {
		cfg.activationRule = strings.TrimSpace(expression)
	}
}

// WithActivityHooks emits element events to hooks. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *registryConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityConfig overrides the emitter configuration. Without it,
// emission is enabled whenever hooks are configured.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *registryConfig) {
		c := config
		cfg.activityConfig = &c
	}
}

func (cfg registryConfig) emitter() *activity.Emitter {
	config := activity.Config{Enabled: true}
	if cfg.activityConfig != nil {
		config = *cfg.activityConfig
	}
	return activity.NewEmitter(cfg.activityHooks, config)
}

func (cfg registryConfig) resolveEvaluator() Evaluator {
	if cfg.evaluator != nil {
		return cfg.evaluator
	}
	var exprOpts []ExprEvaluatorOption
	if cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
	}
	if cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
	}
	return NewExprEvaluator(exprOpts...)
}
