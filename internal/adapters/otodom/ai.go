package otodom

import (
	"encoding/json"
	"fmt"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// AIPrompt собирает запрос к модели. Для Otodom в модель уходит весь
// сохраненный payload карточки: структурированные поля там ровно
// такие же, как на странице, и дают модели больше контекста,
// чем одно текстовое описание.
func (a *Adapter) AIPrompt(detail domain.ListingDetail) string {
	return "Below is a JSON payload describing an apartment rental listing. " +
		"Extract the requested attributes from it. " +
		"Use null for anything the listing does not state explicitly.\n\n" +
		detail.RawInfo
}

// AISchema - схема структурированного извлечения площадки.
func (a *Adapter) AISchema() []domain.AISchemaField {
	return []domain.AISchemaField{
		{Name: "allowed_with_pets", Type: "boolean", Description: "Whether the landlord allows pets in the apartment"},
		{Name: "availability_date", Type: "string", Description: "Date the apartment becomes available, ISO format if stated"},
		{Name: "bedroom_number", Type: "integer", Description: "Number of bedrooms, excluding the living room"},
		{Name: "kitchen_combined_with_living_room", Type: "boolean", Description: "Whether the kitchen is an annex combined with the living room"},
		{Name: "occasional_lease", Type: "boolean", Description: "Whether the contract is an occasional lease (najem okazjonalny)"},
	}
}

type aiResult struct {
	AllowedWithPets               *bool   `json:"allowed_with_pets"`
	AvailabilityDate              *string `json:"availability_date"`
	BedroomNumber                 *int    `json:"bedroom_number"`
	KitchenCombinedWithLivingRoom *bool   `json:"kitchen_combined_with_living_room"`
	OccasionalLease               *bool   `json:"occasional_lease"`
}

// ParseAIResult разбирает ответ модели в AIFacts.
func (a *Adapter) ParseAIResult(raw []byte, listingID string) (domain.AIFacts, error) {
	var result aiResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.AIFacts{}, fmt.Errorf("otodom ai: unmarshal model response: %w", err)
	}
	return domain.AIFacts{
		ID:                            listingID,
		Source:                        domain.SourceOtodom,
		AllowedWithPets:               result.AllowedWithPets,
		AvailabilityDate:              result.AvailabilityDate,
		BedroomNumber:                 result.BedroomNumber,
		KitchenCombinedWithLivingRoom: result.KitchenCombinedWithLivingRoom,
		OccasionalLease:               result.OccasionalLease,
	}, nil
}
