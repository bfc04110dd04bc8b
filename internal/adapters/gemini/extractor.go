package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

// ExtractorAdapter реализует AIExtractorPort поверх Gemini API.
// Модель получает схему ответа и отдает строго JSON - разбор ответа
// сводится к json.Unmarshal на стороне площадки.
type ExtractorAdapter struct {
	client *genai.Client
}

// NewExtractorAdapter создает новый экземпляр адаптера.
func NewExtractorAdapter(ctx context.Context, apiKey string) (*ExtractorAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini extractor: api key cannot be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini extractor: create client: %w", err)
	}
	return &ExtractorAdapter{client: client}, nil
}

// Extract выполняет один запрос структурированного извлечения.
// Исчерпание квоты модели оборачивается в port.ErrAIQuotaExhausted,
// чтобы политика повтора могла отличить его от прочих сбоев.
func (a *ExtractorAdapter) Extract(ctx context.Context, req port.AIRequest) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   buildSchema(req.Schema),
	}

	resp, err := a.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED") {
			return nil, fmt.Errorf("model '%s': %w", req.Model, port.ErrAIQuotaExhausted)
		}
		return nil, fmt.Errorf("model '%s': generate content: %w", req.Model, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("model '%s': empty response", req.Model)
	}
	return []byte(text), nil
}

// buildSchema переводит схему площадки в формат API. Все поля
// nullable: модель обязана отвечать null, а не выдумывать значения.
func buildSchema(fields []domain.AISchemaField) *genai.Schema {
	properties := make(map[string]*genai.Schema, len(fields))
	for _, field := range fields {
		properties[field.Name] = &genai.Schema{
			Type:        schemaType(field.Type),
			Description: field.Description,
			Nullable:    genai.Ptr(true),
		}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
	}
}

func schemaType(name string) genai.Type {
	switch name {
	case "boolean":
		return genai.TypeBoolean
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	default:
		return genai.TypeString
	}
}
