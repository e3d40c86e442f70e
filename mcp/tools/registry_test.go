package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func TestRegistry_BuiltinTools(t *testing.T) {
	registry := NewRegistry(newMockServer(t))

	expected := []string{"parinfer_process", "parinfer_format", "parinfer_format_files", "parinfer_changes"}
	tools := registry.List()
	if len(tools) != len(expected) {
		t.Fatalf("expected %d tools, got %d", len(expected), len(tools))
	}
	for i, name := range expected {
		if tools[i].Name() != name {
			t.Errorf("tool %d = %s, want %s", i, tools[i].Name(), name)
		}
		if _, ok := registry.Get(name); !ok {
			t.Errorf("Tool '%s' should be registered", name)
		}
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	registry := NewRegistry(newMockServer(t))

	custom := NewTool("parinfer_changes").
		WithDescription("replacement").
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			return "custom", nil
		}).
		Build()
	registry.Register(custom)

	if len(registry.List()) != 4 {
		t.Errorf("re-registering should not add a tool, got %d", len(registry.List()))
	}
	result, err := registry.Execute(context.Background(), "parinfer_changes", nil)
	if err != nil || result != "custom" {
		t.Errorf("Execute = %v, %v", result, err)
	}
}

func TestRegistry_ExecuteUnknown(t *testing.T) {
	registry := NewRegistry(newMockServer(t))
	_, err := registry.Execute(context.Background(), "nope", nil)
	assertError(t, err, "tool not found")
}

func TestRegistry_Definitions(t *testing.T) {
	registry := NewRegistry(newMockServer(t))

	for _, def := range registry.Definitions() {
		if def.Description == "" {
			t.Errorf("%s has no description", def.Name)
		}
		if def.InputSchema["type"] != "object" {
			t.Errorf("%s schema type = %v", def.Name, def.InputSchema["type"])
		}
		if _, ok := def.InputSchema["$schema"]; !ok {
			t.Errorf("%s schema was not normalized", def.Name)
		}
	}
}
