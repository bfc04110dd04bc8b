package gemini

import (
	"context"
	"testing"

	"google.golang.org/genai"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

func TestBuildSchemaMarksEveryFieldNullable(t *testing.T) {
	fields := []domain.AISchemaField{
		{Name: "allowed_with_pets", Type: "boolean", Description: "pets"},
		{Name: "bedroom_number", Type: "integer", Description: "bedrooms"},
		{Name: "deposit", Type: "number", Description: "deposit"},
		{Name: "street", Type: "string", Description: "street"},
	}

	schema := buildSchema(fields)
	if schema.Type != genai.TypeObject {
		t.Errorf("expected object schema, got %v", schema.Type)
	}
	if len(schema.Properties) != len(fields) {
		t.Fatalf("expected %d properties, got %d", len(fields), len(schema.Properties))
	}

	wantTypes := map[string]genai.Type{
		"allowed_with_pets": genai.TypeBoolean,
		"bedroom_number":    genai.TypeInteger,
		"deposit":           genai.TypeNumber,
		"street":            genai.TypeString,
	}
	for name, wantType := range wantTypes {
		prop, ok := schema.Properties[name]
		if !ok {
			t.Errorf("missing property %s", name)
			continue
		}
		if prop.Type != wantType {
			t.Errorf("property %s: got type %v, want %v", name, prop.Type, wantType)
		}
		if prop.Nullable == nil || !*prop.Nullable {
			t.Errorf("property %s must be nullable", name)
		}
	}
}

func TestNewExtractorAdapterRequiresKey(t *testing.T) {
	if _, err := NewExtractorAdapter(context.Background(), ""); err == nil {
		t.Error("empty api key must be rejected")
	}
}
