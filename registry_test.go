package skybrief

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	registry := NewFunctionRegistry()
	registry.Register("ping", func(ctx context.Context, args map[string]any) (string, error) {
		return "pong", nil
	})

	fn, ok := registry.Resolve("ping")
	if !ok {
		t.Fatalf("expected ping to resolve")
	}
	out, err := fn(context.Background(), nil)
	if err != nil || out != "pong" {
		t.Fatalf("unexpected result %q %v", out, err)
	}

	if _, ok := registry.Resolve("missing"); ok {
		t.Fatalf("expected missing to not resolve")
	}
}

func TestRegistryIgnoresEmptyRegistrations(t *testing.T) {
	registry := NewFunctionRegistry()
	registry.Register("", func(ctx context.Context, args map[string]any) (string, error) { return "", nil })
	registry.Register("nil_fn", nil)

	if len(registry.Names()) != 0 {
		t.Fatalf("expected empty registry, got %v", registry.Names())
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewDefaultRegistry()
	want := []string{"get_news_articles", "get_weather"}
	if got := registry.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDecodeArguments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{"Valid", `{"location":"Tokyo"}`, map[string]any{"location": "Tokyo"}},
		{"Empty", ``, map[string]any{}},
		{"Malformed", `{oops`, map[string]any{}},
		{"NullLiteral", `null`, map[string]any{}},
		{"WrongShape", `[1,2,3]`, map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeArguments(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestErrorOutputIsJSONWithErrorKey(t *testing.T) {
	out := errorOutput("unknown function: %s", "get_stock_price")

	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if payload["error"] != "unknown function: get_stock_price" {
		t.Fatalf("unexpected payload %v", payload)
	}
}
