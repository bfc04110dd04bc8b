package olx

import (
	"encoding/json"
	"fmt"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// AIPrompt собирает запрос к модели. Для OLX в модель уходит текст
// описания: структурированных полей площадка почти не отдает, поэтому
// модель дополнительно вытягивает улицу и залог.
func (a *Adapter) AIPrompt(detail domain.ListingDetail) string {
	return "Below is the description of an apartment rental listing in Poland. " +
		"Extract the requested attributes from it. " +
		"Use null for anything the listing does not state explicitly.\n\n" +
		detail.DescriptionLong
}

// AISchema - схема площадки: общие поля извлечения плюс улица и залог,
// которых нет в разметке карточки.
func (a *Adapter) AISchema() []domain.AISchemaField {
	return []domain.AISchemaField{
		{Name: "allowed_with_pets", Type: "boolean", Description: "Whether the landlord allows pets in the apartment"},
		{Name: "availability_date", Type: "string", Description: "Date the apartment becomes available, ISO format if stated"},
		{Name: "bedroom_number", Type: "integer", Description: "Number of bedrooms, excluding the living room"},
		{Name: "kitchen_combined_with_living_room", Type: "boolean", Description: "Whether the kitchen is an annex combined with the living room"},
		{Name: "occasional_lease", Type: "boolean", Description: "Whether the contract is an occasional lease (najem okazjonalny)"},
		{Name: "street", Type: "string", Description: "Street the apartment is located on, without the house number"},
		{Name: "deposit", Type: "number", Description: "Security deposit amount in PLN"},
	}
}

type aiResult struct {
	AllowedWithPets               *bool    `json:"allowed_with_pets"`
	AvailabilityDate              *string  `json:"availability_date"`
	BedroomNumber                 *int     `json:"bedroom_number"`
	KitchenCombinedWithLivingRoom *bool    `json:"kitchen_combined_with_living_room"`
	OccasionalLease               *bool    `json:"occasional_lease"`
	Street                        *string  `json:"street"`
	Deposit                       *float64 `json:"deposit"`
}

// ParseAIResult разбирает ответ модели в AIFacts.
func (a *Adapter) ParseAIResult(raw []byte, listingID string) (domain.AIFacts, error) {
	var result aiResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.AIFacts{}, fmt.Errorf("olx ai: unmarshal model response: %w", err)
	}
	return domain.AIFacts{
		ID:                            listingID,
		Source:                        domain.SourceOLX,
		AllowedWithPets:               result.AllowedWithPets,
		AvailabilityDate:              result.AvailabilityDate,
		BedroomNumber:                 result.BedroomNumber,
		KitchenCombinedWithLivingRoom: result.KitchenCombinedWithLivingRoom,
		OccasionalLease:               result.OccasionalLease,
		Street:                        result.Street,
		Deposit:                       result.Deposit,
	}, nil
}
