package skybrief

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Function is a local callback an agent run can request. Arguments arrive as
// a decoded JSON object; the return value is the string handed back to the
// run verbatim.
type Function func(ctx context.Context, args map[string]any) (string, error)

// FunctionRegistry maps callback names to implementations. The mapping is
// fixed once the driver starts; Register is not safe to call concurrently
// with Resolve.
type FunctionRegistry struct {
	functions map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]Function)}
}

// Register binds a name to a function, replacing any prior binding.
func (r *FunctionRegistry) Register(name string, fn Function) {
	if name == "" || fn == nil {
		return
	}
	r.functions[name] = fn
}

// Resolve looks up a function by name.
func (r *FunctionRegistry) Resolve(name string) (Function, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

// Names returns the registered names in sorted order.
func (r *FunctionRegistry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// errorOutput renders a failure as the JSON object handed back to the run.
// Runs must always be resumed, so failures travel inside the output payload
// rather than aborting the driver.
func errorOutput(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	encoded, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error": "internal encoding failure"}`
	}
	return string(encoded)
}

// decodeArguments parses a tool call's raw argument string. Malformed or
// empty payloads decode to an empty object so the callback still runs.
func decodeArguments(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]any{}
	}
	return args
}
