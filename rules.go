package state

import (
	"fmt"
	"time"
)

// RuleContext carries the inputs an expression sees when evaluated against
// one mutation: the key and candidate value, a snapshot of the table, and
// the current version. Args and Metadata are caller-supplied extras.
type RuleContext struct {
	Key      string
	Value    any
	State    map[string]any
	Version  uint64
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.State == nil {
		ctx.State = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
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

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// GuardRule compiles expression into before-middleware that vetoes the
// mutation when the result is falsy. Evaluation failures propagate to the
// Set caller as a *RuleError.
func GuardRule(evaluator Evaluator, expression string) (Middleware, error) {
	rule, err := compileRule(evaluator, expression)
	if err != nil {
		return nil, err
	}
	return func(mctx *MutationContext, snapshot map[string]any) (Decision, error) {
		result, err := rule.Evaluate(RuleContext{
			Key:   mctx.Key,
			Value: mctx.Value,
			State: snapshot,
		})
		if err != nil {
			return Decision{}, wrapRuleEvaluationError("", expression, mctx.Key, err)
		}
		if truthy(result) {
			return Continue(), nil
		}
		return Abort(), nil
	}, nil
}

// TransformRule compiles expression into before-middleware that overrides
// the candidate value with the expression result.
func TransformRule(evaluator Evaluator, expression string) (Middleware, error) {
	rule, err := compileRule(evaluator, expression)
	if err != nil {
		return nil, err
	}
	return func(mctx *MutationContext, snapshot map[string]any) (Decision, error) {
		result, err := rule.Evaluate(RuleContext{
			Key:   mctx.Key,
			Value: mctx.Value,
			State: snapshot,
		})
		if err != nil {
			return Decision{}, wrapRuleEvaluationError("", expression, mctx.Key, err)
		}
		return Override(result), nil
	}, nil
}

// AuditRule compiles expression into after-middleware that evaluates it
// post-commit and forwards the result to logger. Evaluation failures go to
// the logger too; audits never fail a committed mutation.
func AuditRule(evaluator Evaluator, expression string, logger MutationLogger) (Middleware, error) {
	rule, err := compileRule(evaluator, expression)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = noopMutationLogger{}
	}
	return func(mctx *MutationContext, snapshot map[string]any) (Decision, error) {
		result, err := rule.Evaluate(RuleContext{
			Key:   mctx.Key,
			Value: mctx.Value,
			State: snapshot,
		})
		logger.LogMutation(MutationLogEvent{
			Op:     "audit",
			Key:    mctx.Key,
			Result: result,
			Err:    wrapRuleEvaluationError("", expression, mctx.Key, err),
		})
		return Continue(), nil
	}, nil
}

func compileRule(evaluator Evaluator, expression string) (CompiledRule, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("state: evaluator is required")
	}
	if expression == "" {
		return nil, fmt.Errorf("state: expression must not be empty")
	}
	return evaluator.Compile(expression)
}

// truthy reduces an expression result to a veto verdict: nil, false, zero
// numbers and empty strings veto, anything else passes.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}
