package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Result is the outcome of a tool call. Failures are reported in-band with
// IsError set so callers can hand them back to the requester verbatim.
type Result struct {
	Content string
	IsError bool
}

// ToolBox is a named collection of tools.
type ToolBox struct {
	tools map[string]Tool
}

// New creates an empty ToolBox.
func New() *ToolBox {
	return &ToolBox{tools: make(map[string]Tool)}
}

// Register adds tools, replacing any with the same name.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Tools returns the registered tools sorted by name.
func (tb *ToolBox) Tools() []Tool {
	out := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Tool) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Call runs the named tool. An unknown tool or a handler error yields a
// Result with IsError set.
func (tb *ToolBox) Call(ctx context.Context, name string, args json.RawMessage) Result {
	t, ok := tb.tools[name]
	if !ok {
		return Result{Content: fmt.Sprintf("tool not found: %s", name), IsError: true}
	}

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	out, err := t.Handler(ctx, args)
	if err != nil {
		return Result{Content: err.Error(), IsError: true}
	}

	return Result{Content: out}
}
