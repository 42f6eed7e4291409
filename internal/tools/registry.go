// Package tools exposes the POS operations as named commands the speech
// provider can invoke. Each command has a JSON-schema definition; arguments
// are validated at the registry boundary so handlers only see well-formed
// payloads, and every invocation yields exactly one result.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// Invocation carries per-call context into a handler.
type Invocation struct {
	Ctx context.Context
	// SessionID identifies the voice session that triggered the call.
	SessionID string
}

// Handler executes one command. The returned value must be JSON-encodable;
// failures should be *Error so the kind survives to the provider.
type Handler func(inv Invocation, args Args) (interface{}, error)

type entry struct {
	def     Definition
	handler Handler
}

// Registry maps command names to handlers.
type Registry struct {
	entries map[string]entry
	out     io.Writer
}

// RegistryOpts holds parameters for creating a Registry.
type RegistryOpts struct {
	Out io.Writer // defaults to os.Stdout
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts RegistryOpts) *Registry {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Registry{entries: make(map[string]entry), out: out}
}

// Register adds a command. Registering the same name twice is a programming
// error and fails loudly.
func (r *Registry) Register(def Definition, h Handler) error {
	if def.Name == "" {
		return fmt.Errorf("tools: definition has no name")
	}
	if h == nil {
		return fmt.Errorf("tools: %s: handler is required", def.Name)
	}
	if _, exists := r.entries[def.Name]; exists {
		return fmt.Errorf("tools: %s: already registered", def.Name)
	}
	r.entries[def.Name] = entry{def: def, handler: h}
	return nil
}

// Definitions returns the command catalog sorted by name, ready to hand to
// the speech provider.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.entries))
	for _, e := range r.entries {
		defs = append(defs, e.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute runs one command and always returns a usable result: either the
// handler's output, or a *Error describing the failure. Unknown commands
// and invalid arguments never reach a handler.
func (r *Registry) Execute(inv Invocation, name string, args Args) (interface{}, *Error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, NotFoundf("unknown command %q", name)
	}
	if args == nil {
		args = Args{}
	}
	if verr := validateArgs(e.def, args); verr != nil {
		return nil, verr
	}

	out, err := e.handler(inv, args)
	if err != nil {
		var terr *Error
		if errors.As(err, &terr) {
			fmt.Fprintf(r.out, "tools: %s failed: %s\n", name, terr.Message)
			return nil, terr
		}
		fmt.Fprintf(r.out, "tools: %s %v failed: %v\n", name, args, err)
		return nil, &Error{Kind: KindInternal, Message: fmt.Sprintf("%s %v: %v", name, args, err)}
	}
	return out, nil
}
