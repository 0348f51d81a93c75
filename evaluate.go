package switcher

import (
	"errors"
	"fmt"
	"time"
)

// ErrNonBoolResult is returned by EvaluateBool when the expression yields a
// non-boolean value.
var ErrNonBoolResult = errors.New("switcher: expression did not return a bool")

// Evaluate runs expr against the current registry snapshot.
func (r *Registry) Evaluate(expr string) (Response[any], error) {
	return r.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr using ctx, falling back to the registry snapshot
// when ctx.Snapshot is nil.
func (r *Registry) EvaluateWith(ctx RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, fmt.Errorf("switcher: expression must not be empty")
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = r.Snapshot().Bindings()
	}
	if ctx.Registry == "" {
		ctx.Registry = r.id
	}
	ctx = ctx.withDefaults()

	start := time.Now()
	value, err := r.evaluator.Evaluate(ctx, expr)
	err = wrapEvaluationError(evaluatorEngineName(r.evaluator), expr, ctx.label(), err)
	r.evalLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:    evaluatorEngineName(r.evaluator),
		Expr:      expr,
		Registry:  ctx.label(),
		Candidate: ctx.Candidate,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		return Response[any]{}, err
	}
	return Response[any]{Value: value}, nil
}

// EvaluateBool runs expr and requires a boolean result.
func (r *Registry) EvaluateBool(expr string) (bool, error) {
	res, err := r.Evaluate(expr)
	if err != nil {
		return false, err
	}
	ok, isBool := res.Value.(bool)
	if !isBool {
		return false, fmt.Errorf("%w: got %T", ErrNonBoolResult, res.Value)
	}
	return ok, nil
}

// ActivationRule returns the configured activation rule expression.
func (r *Registry) ActivationRule() string {
	return r.ruleExpr
}

// checkRuleLocked evaluates the activation rule for candidate against the
// current state. The rule runs under the registry lock; functions it calls
// must not use the registry.
func (r *Registry) checkRuleLocked(candidate string) error {
	if r.rule == nil {
		return nil
	}
	return r.checkRuleAgainstLocked(candidate, r.snapshotLocked())
}

// checkRuleAgainstLocked evaluates the activation rule for candidate against
// snap, which operations changing several elements at once use to show the
// rule every other change they are about to make.
func (r *Registry) checkRuleAgainstLocked(candidate string, snap Snapshot) error {
	if r.rule == nil {
		return nil
	}
	ctx := RuleContext{
		Snapshot:  snap.Bindings(),
		Candidate: candidate,
		Registry:  r.id,
	}.withDefaults()

	start := time.Now()
	result, err := r.rule.Evaluate(ctx)
	r.evalLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:    evaluatorEngineName(r.evaluator),
		Expr:      r.ruleExpr,
		Registry:  r.id,
		Candidate: candidate,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		return wrapError(ErrRuleRejected, candidate, err)
	}
	allowed, isBool := result.(bool)
	if !isBool {
		return newError(ErrRuleRejected, candidate, fmt.Sprintf("activation rule returned %T, want bool", result))
	}
	if !allowed {
		return newError(ErrRuleRejected, candidate, fmt.Sprintf("activation rule %q evaluated to false", r.ruleExpr))
	}
	return nil
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if name := jsEngineName(e); name != "" {
			return name
		}
		return "custom"
	}
}
