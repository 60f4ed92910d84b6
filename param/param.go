package param

import (
	"fmt"
	"sort"
)

// Kind enumerates value types a plotter configuration option can take.
type Kind int

const (
	Float Kind = iota
	Int
	Str
	Bool
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Str:
		return "string"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Param declares a single configuration option accepted by a plotter kind.
type Param struct {
	Kind     Kind
	Default  any
	Required bool
	Doc      string
}

// Options maps option name to its declaration.
type Options map[string]Param

// Config holds option values resolved against an Options declaration.
type Config struct {
	values map[string]any
}

// Resolve checks raw option values against a declaration and fills in
// defaults. Unknown keys, missing required keys and type mismatches are all
// reported as errors.
func Resolve(opts Options, raw map[string]any) (*Config, error) {
	values := map[string]any{}
	leftover := map[string]bool{}
	for key := range raw {
		leftover[key] = true
	}

	for name, p := range opts {
		rawValue, ok := raw[name]
		if !ok {
			if p.Required {
				return nil, fmt.Errorf("missing required configuration option %s", name)
			}
			values[name] = p.Default
			continue
		}
		delete(leftover, name)

		value, err := coerce(p.Kind, rawValue)
		if err != nil {
			return nil, fmt.Errorf("configuration option %s: %s", name, err)
		}
		values[name] = value
	}

	if len(leftover) > 0 {
		keys := make([]string, 0, len(leftover))
		for key := range leftover {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unrecognized configuration options %v", keys)
	}

	return &Config{values: values}, nil
}

// coerce converts a YAML-decoded value to the declared kind. YAML decodes
// whole numbers as int, so int values are accepted where a float is declared.
func coerce(kind Kind, value any) (any, error) {
	switch kind {
	case Float:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	case Int:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		}
	case Str:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case Bool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("expected %s value, got %T", kind, value)
}

func (c *Config) lookup(name string) any {
	value, ok := c.values[name]
	if !ok {
		panic(fmt.Sprintf("access to undeclared configuration option %s", name))
	}
	return value
}

// Float returns the value of a declared float option.
func (c *Config) Float(name string) float64 {
	return c.lookup(name).(float64)
}

// Int returns the value of a declared int option.
func (c *Config) Int(name string) int {
	return c.lookup(name).(int)
}

// Str returns the value of a declared string option.
func (c *Config) Str(name string) string {
	return c.lookup(name).(string)
}

// Bool returns the value of a declared bool option.
func (c *Config) Bool(name string) bool {
	return c.lookup(name).(bool)
}
