package state_test

import (
	"errors"
	"testing"

	state "github.com/goliatone/go-state"
)

func TestGuardRuleVetoesFalsyExpression(t *testing.T) {
	c, err := state.New(state.WithInitial(map[string]any{"count": 0}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	guard, err := state.GuardRule(state.NewExprEvaluator(), `key != "count" || value >= 0`)
	if err != nil {
		t.Fatalf("guard rule: %v", err)
	}
	c.UseBefore(guard)

	if err := c.Set("count", -5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, _ := c.Get("count"); value != 0 {
		t.Fatalf("negative value passed the guard: %v", value)
	}

	if err := c.Set("count", 7); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, _ := c.Get("count"); value != 7 {
		t.Fatalf("positive value vetoed: %v", value)
	}

	// Unrelated keys pass through the first disjunct.
	if err := c.Set("label", "anything"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, _ := c.Get("label"); value != "anything" {
		t.Fatalf("guard leaked onto another key: %v", value)
	}
}

func TestGuardRuleSeesCurrentState(t *testing.T) {
	c, err := state.New(state.WithInitial(map[string]any{"locked": true, "n": 1}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	guard, err := state.GuardRule(state.NewExprEvaluator(), `key != "n" || state.locked == false`)
	if err != nil {
		t.Fatalf("guard rule: %v", err)
	}
	c.UseBefore(guard)

	if err := c.Set("n", 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, _ := c.Get("n"); value != 1 {
		t.Fatalf("locked state should veto, got %v", value)
	}

	if err := c.Set("locked", false); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set("n", 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, _ := c.Get("n"); value != 2 {
		t.Fatalf("unlocked state should pass, got %v", value)
	}
}

func TestTransformRuleOverridesValue(t *testing.T) {
	c, err := state.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	transform, err := state.TransformRule(state.NewExprEvaluator(), `value * 2`)
	if err != nil {
		t.Fatalf("transform rule: %v", err)
	}
	c.UseBefore(transform)

	if err := c.Set("n", 21); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, _ := c.Get("n"); value != 42 {
		t.Fatalf("expected transformed 42, got %v", value)
	}
}

func TestRuleUsesFunctionRegistry(t *testing.T) {
	registry := state.NewFunctionRegistry()
	if err := registry.Register("clamp", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, errors.New("clamp wants value, max")
		}
		value, _ := args[0].(int)
		max, _ := args[1].(int)
		if value > max {
			return max, nil
		}
		return value, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	evaluator := state.NewExprEvaluator(state.ExprWithFunctionRegistry(registry))
	transform, err := state.TransformRule(evaluator, `clamp(value, 100)`)
	if err != nil {
		t.Fatalf("transform rule: %v", err)
	}

	c, err := state.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.UseBefore(transform)

	if err := c.Set("n", 250); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, _ := c.Get("n"); value != 100 {
		t.Fatalf("expected clamped 100, got %v", value)
	}
}

func TestDuplicateFunctionRegistrationFails(t *testing.T) {
	registry := state.NewFunctionRegistry()
	fn := func(...any) (any, error) { return nil, nil }
	if err := registry.Register("fn", fn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("FN", fn); err == nil {
		t.Fatal("duplicate registration (case-insensitive) should fail")
	}
}

func TestProgramCachePopulatedOnCompile(t *testing.T) {
	cache := state.NewMapProgramCache()
	evaluator := state.NewExprEvaluator(state.ExprWithProgramCache(cache))

	expression := `value >= 0`
	if _, err := state.GuardRule(evaluator, expression); err != nil {
		t.Fatalf("guard rule: %v", err)
	}
	if _, ok := cache.Get(expression); !ok {
		t.Fatal("compiled program not cached")
	}
}

func TestRuleEvaluationErrorIsTyped(t *testing.T) {
	c, err := state.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// "undefined" compiles under AllowUndefinedVariables but fails when
	// invoked as a function at run time.
	guard, err := state.GuardRule(state.NewExprEvaluator(), `undefined(value)`)
	if err != nil {
		t.Fatalf("guard rule: %v", err)
	}
	c.UseBefore(guard)

	err = c.Set("k", 1)
	if err == nil {
		t.Fatal("expected evaluation error")
	}
	var ruleErr *state.RuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected *RuleError, got %T: %v", err, err)
	}
	if ruleErr.Engine != "expr" {
		t.Fatalf("expected expr engine, got %q", ruleErr.Engine)
	}
	if ruleErr.Key != "k" {
		t.Fatalf("expected key metadata, got %q", ruleErr.Key)
	}
	if _, ok := c.Get("k"); ok {
		t.Fatal("failed rule committed the mutation")
	}
}

func TestEmptyExpressionRejected(t *testing.T) {
	if _, err := state.GuardRule(state.NewExprEvaluator(), ""); err == nil {
		t.Fatal("expected error for empty expression")
	}
	if _, err := state.GuardRule(nil, "value > 0"); err == nil {
		t.Fatal("expected error for nil evaluator")
	}
}

func TestCELGuardRule(t *testing.T) {
	c, err := state.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	guard, err := state.GuardRule(state.NewCELEvaluator(), `key != "count" || value < 100`)
	if err != nil {
		t.Fatalf("cel guard: %v", err)
	}
	c.UseBefore(guard)

	if err := c.Set("count", 250); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := c.Get("count"); ok {
		t.Fatal("cel guard should have vetoed")
	}

	if err := c.Set("count", 50); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, _ := c.Get("count"); value != 50 {
		t.Fatalf("cel guard vetoed a valid value: %v", value)
	}
}

func TestAuditRuleForwardsResultToLogger(t *testing.T) {
	var events []state.MutationLogEvent
	logger := state.MutationLoggerFunc(func(event state.MutationLogEvent) {
		events = append(events, event)
	})

	audit, err := state.AuditRule(state.NewExprEvaluator(), `key + "=" + string(value)`, logger)
	if err != nil {
		t.Fatalf("audit rule: %v", err)
	}

	c, err := state.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.UseAfter(audit)

	if err := c.Set("volume", 7); err != nil {
		t.Fatalf("set: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(events))
	}
	event := events[0]
	if event.Op != "audit" || event.Key != "volume" {
		t.Fatalf("unexpected audit event: %+v", event)
	}
	if event.Result != "volume=7" {
		t.Fatalf("expected evaluated result, got %v", event.Result)
	}
	if event.Err != nil {
		t.Fatalf("successful audit should carry no error: %v", event.Err)
	}
}

func TestAuditRuleNeverFailsCommit(t *testing.T) {
	var events []state.MutationLogEvent
	logger := state.MutationLoggerFunc(func(event state.MutationLogEvent) {
		events = append(events, event)
	})

	audit, err := state.AuditRule(state.NewExprEvaluator(), `undefined(value)`, logger)
	if err != nil {
		t.Fatalf("audit rule: %v", err)
	}

	c, err := state.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.UseAfter(audit)

	if err := c.Set("k", 1); err != nil {
		t.Fatalf("audit failures must not fail the mutation: %v", err)
	}
	if value, _ := c.Get("k"); value != 1 {
		t.Fatalf("commit lost: %v", value)
	}

	found := false
	for _, event := range events {
		if event.Op == "audit" && event.Err != nil {
			found = true
		}
	}
	if !found {
		t.Fatal("audit failure not surfaced through the logger")
	}
}
