package state

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the declarative construction path: initial values, persistence
// settings and expression rules, typically loaded from a YAML document.
type Config struct {
	Initial map[string]any `yaml:"initial"`
	Persist bool           `yaml:"persist"`
	Slot    string         `yaml:"slot"`
	Rules   []RuleConfig   `yaml:"rules"`
}

// RuleConfig declares one expression rule to compile into middleware.
type RuleConfig struct {
	Name   string `yaml:"name"`
	Phase  string `yaml:"phase"`  // before (default) or after
	Kind   string `yaml:"kind"`   // guard, transform or audit
	Engine string `yaml:"engine"` // expr (default), cel or js
	Expr   string `yaml:"expr"`
}

// ParseConfig decodes a YAML container configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("state: parse config: %w", err)
	}
	return cfg, nil
}

// Build constructs a container from the configuration, compiling every rule
// into middleware. Extra options append to (and may override) the
// configured ones.
func (cfg Config) Build(opts ...Option) (*Container, error) {
	base := []Option{
		WithInitial(cfg.Initial),
		WithSlotKey(cfg.Slot),
	}
	if cfg.Persist {
		base = append(base, WithPersistence())
	}
	container, err := New(append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	for i, rule := range cfg.Rules {
		middleware, phase, err := rule.compile()
		if err != nil {
			return nil, fmt.Errorf("state: rule %s: %w", rule.label(i), err)
		}
		if phase == "after" {
			container.UseAfter(middleware)
			continue
		}
		container.UseBefore(middleware)
	}
	return container, nil
}

func (rule RuleConfig) compile() (Middleware, string, error) {
	phase := strings.ToLower(strings.TrimSpace(rule.Phase))
	switch phase {
	case "", "before":
		phase = "before"
	case "after":
	default:
		return nil, "", fmt.Errorf("unknown phase %q", rule.Phase)
	}

	evaluator, err := evaluatorFor(rule.Engine)
	if err != nil {
		return nil, "", err
	}

	kind := strings.ToLower(strings.TrimSpace(rule.Kind))
	switch kind {
	case "", "guard":
		if phase != "before" {
			return nil, "", fmt.Errorf("guard rules must run in the before phase")
		}
		middleware, err := GuardRule(evaluator, rule.Expr)
		return middleware, phase, err
	case "transform":
		if phase != "before" {
			return nil, "", fmt.Errorf("transform rules must run in the before phase")
		}
		middleware, err := TransformRule(evaluator, rule.Expr)
		return middleware, phase, err
	case "audit":
		middleware, err := AuditRule(evaluator, rule.Expr, nil)
		return middleware, "after", err
	default:
		return nil, "", fmt.Errorf("unknown kind %q", rule.Kind)
	}
}

func (rule RuleConfig) label(index int) string {
	if rule.Name != "" {
		return fmt.Sprintf("%q", rule.Name)
	}
	return fmt.Sprintf("#%d", index)
}

func evaluatorFor(engine string) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "expr":
		return NewExprEvaluator(), nil
	case "cel":
		return NewCELEvaluator(), nil
	case "js":
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("js engine requires the js_eval build tag")
		}
		return NewJSEvaluator(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}
