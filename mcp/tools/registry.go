package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/oxhq/parinfer/mcp/types"
)

// Registry holds tools in registration order.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]types.Tool
	ordered []string
}

// NewRegistry creates a registry holding every built-in tool.
func NewRegistry(server types.ServerInterface) *Registry {
	r := &Registry{
		tools: make(map[string]types.Tool),
	}
	RegisterAll(r, server)
	return r
}

// RegisterAll registers all built-in tools
func RegisterAll(r *Registry, server types.ServerInterface) {
	r.Register(NewProcessTool(server))
	r.Register(NewFormatTool(server))
	r.Register(NewFormatFilesTool(server))
	r.Register(NewChangesTool(server))
}

// Register adds a tool, replacing any tool with the same name.
func (r *Registry) Register(tool types.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.ordered = append(r.ordered, name)
	}
	r.tools[name] = tool
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (types.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all tools in registration order
func (r *Registry) List() []types.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]types.Tool, 0, len(r.ordered))
	for _, name := range r.ordered {
		result = append(result, r.tools[name])
	}
	return result
}

// Execute runs a tool by name with the given parameters
func (r *Registry) Execute(ctx context.Context, name string, params json.RawMessage) (any, error) {
	tool, exists := r.Get(name)
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool.Handler()(ctx, params)
}

// Definitions returns the tool metadata for tools/list.
func (r *Registry) Definitions() []types.ToolDefinition {
	tools := r.List()
	definitions := make([]types.ToolDefinition, 0, len(tools))

	for _, tool := range tools {
		definitions = append(definitions, types.ToolDefinition{
			Name:        tool.Name(),
			Title:       tool.Name(),
			Description: tool.Description(),
			InputSchema: types.NormalizeSchema(tool.InputSchema()),
		})
	}

	return definitions
}
