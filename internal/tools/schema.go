package tools

import "math"

// Definition describes one command: its name, what it does, and the JSON
// schema of its arguments. Definitions are sent verbatim to the speech
// provider so the model knows what it may call.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Object `json:"parameters"`
}

// Object is a JSON-schema object node.
type Object struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property is one argument's schema.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Items       *Object  `json:"items,omitempty"`
}

// Args is a decoded argument payload. JSON numbers arrive as float64.
type Args map[string]interface{}

// String returns the named string argument, or "" when absent.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Int returns the named numeric argument truncated to int, or def when
// absent.
func (a Args) Int(key string, def int) int {
	f, ok := a[key].(float64)
	if !ok {
		return def
	}
	return int(f)
}

// Float returns the named numeric argument, or def when absent.
func (a Args) Float(key string, def float64) float64 {
	f, ok := a[key].(float64)
	if !ok {
		return def
	}
	return f
}

// Bool returns the named boolean argument, or def when absent.
func (a Args) Bool(key string, def bool) bool {
	b, ok := a[key].(bool)
	if !ok {
		return def
	}
	return b
}

// Objects returns the named array-of-objects argument.
func (a Args) Objects(key string) []Args {
	raw, ok := a[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]Args, 0, len(raw))
	for _, el := range raw {
		if m, ok := el.(map[string]interface{}); ok {
			out = append(out, Args(m))
		}
	}
	return out
}

// validateArgs checks an argument payload against a definition: required
// keys present, declared types respected, enum values in range. Commands
// never see an invalid payload.
func validateArgs(def Definition, args Args) *Error {
	for _, key := range def.Parameters.Required {
		if _, ok := args[key]; !ok {
			return Validationf("%s: missing required argument %q", def.Name, key)
		}
	}
	for key, val := range args {
		prop, ok := def.Parameters.Properties[key]
		if !ok {
			// Providers sometimes pass extras; ignore rather than fail.
			continue
		}
		if err := checkType(def.Name, key, prop, val); err != nil {
			return err
		}
	}
	return nil
}

func checkType(command, key string, prop Property, val interface{}) *Error {
	switch prop.Type {
	case "string":
		s, ok := val.(string)
		if !ok {
			return Validationf("%s: argument %q must be a string", command, key)
		}
		if len(prop.Enum) > 0 && !contains(prop.Enum, s) {
			return Validationf("%s: argument %q must be one of %v", command, key, prop.Enum)
		}
	case "number":
		if _, ok := val.(float64); !ok {
			return Validationf("%s: argument %q must be a number", command, key)
		}
	case "integer":
		f, ok := val.(float64)
		if !ok || f != math.Trunc(f) {
			return Validationf("%s: argument %q must be an integer", command, key)
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			return Validationf("%s: argument %q must be a boolean", command, key)
		}
	case "array":
		if _, ok := val.([]interface{}); !ok {
			return Validationf("%s: argument %q must be an array", command, key)
		}
	}
	return nil
}

func contains(set []string, s string) bool {
	for _, el := range set {
		if el == s {
			return true
		}
	}
	return false
}

// requiredString fetches a string argument that the schema marks required
// and rejects the empty string, which providers occasionally send anyway.
func requiredString(command string, args Args, key string) (string, *Error) {
	s := args.String(key)
	if s == "" {
		return "", Validationf("%s: argument %q must not be empty", command, key)
	}
	return s, nil
}
