package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

// NotifyUseCase отбирает из затронутых за прогон объявлений подходящие
// под рыночные правила и рассылает по ним оповещения. Правила проверяются
// по порядку, первое сработавшее определяет тред доставки.
type NotifyUseCase struct {
	storage   port.ListingStoragePort
	messenger port.MessengerPort
	market    domain.MarketConfig
	adapters  map[domain.Source]port.SourceAdapterPort
}

// NewNotifyUseCase создает новый экземпляр use case.
func NewNotifyUseCase(
	storage port.ListingStoragePort,
	messenger port.MessengerPort,
	market domain.MarketConfig,
	adapters map[domain.Source]port.SourceAdapterPort,
) *NotifyUseCase {
	return &NotifyUseCase{
		storage:   storage,
		messenger: messenger,
		market:    market,
		adapters:  adapters,
	}
}

// Execute рассылает оповещения по подходящим кандидатам.
// Сбой доставки логируется и не ретраится.
func (uc *NotifyUseCase) Execute(ctx context.Context, touched []domain.ListingKey) error {
	if len(touched) == 0 {
		return nil
	}

	candidates, err := uc.storage.NotifyCandidates(ctx, touched)
	if err != nil {
		return fmt.Errorf("notify: candidates query: %w", err)
	}

	sent := 0
	for _, c := range candidates {
		rule, ok := uc.matchRule(c)
		if !ok {
			continue
		}
		msg := uc.formatListing(c)
		if err := uc.messenger.Send(ctx, uc.market.ChatID, rule.ThreadID, msg); err != nil {
			log.Printf("Notify: failed to deliver alert for %s: %v\n", c.Key(), err)
			continue
		}
		sent++
	}

	log.Printf("Notify: %d candidates, %d alerts sent\n", len(candidates), sent)
	return nil
}

func (uc *NotifyUseCase) matchRule(c domain.NotifyCandidate) (domain.EligibilityRule, bool) {
	for _, rule := range uc.market.Rules {
		if rule.Matches(c) {
			return rule, true
		}
	}
	return domain.EligibilityRule{}, false
}

// SendRunStatus шлет итог прогона обновления; отправляется ровно один раз
// за прогон независимо от того, были ли пообъявленные оповещения.
func (uc *NotifyUseCase) SendRunStatus(ctx context.Context, processed int) error {
	msg := fmt.Sprintf("Done updating for %s!\nParsed ads: %d", uc.market.Name, processed)
	return uc.messenger.Send(ctx, uc.market.ChatID, uc.market.StatusThreadID, msg)
}

// SendLivenessStatus шлет итог прогона проверки живости.
func (uc *NotifyUseCase) SendLivenessStatus(ctx context.Context, alive, dead int) error {
	msg := fmt.Sprintf("Done live-checking for %s!\nStill alive ads: %d\nDead ads: %d.", uc.market.Name, alive, dead)
	return uc.messenger.Send(ctx, uc.market.ChatID, uc.market.StatusThreadID, msg)
}

// formatListing рендерит оповещение по фиксированному шаблону:
// название, цена, площадь, комнаты, район, тип найма, дата доступности,
// ссылка на карту и дип-линк в дашборд.
func (uc *NotifyUseCase) formatListing(c domain.NotifyCandidate) string {
	url := ""
	if adapter, ok := uc.adapters[c.Source]; ok {
		url = adapter.DetailURL(c.Slug, c.ID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<a href=\"%s\">A new apt</a> just dropped, and it seems to be 🔥:\n", url)
	fmt.Fprintf(&b, "Name: %s\n", c.Title)
	fmt.Fprintf(&b, "Price: %s\n", formatFloat(c.TotalRent()))
	fmt.Fprintf(&b, "Area: %s\n", formatOptFloat(c.AreaM2))
	fmt.Fprintf(&b, "Rooms: %s\n", formatOptInt(c.Rooms))
	fmt.Fprintf(&b, "District: %s\n", formatOptString(c.DistrictSpecific))
	fmt.Fprintf(&b, "Occasional lease: %s\n", formatOptBool(c.OccasionalLease))
	fmt.Fprintf(&b, "Availability date: %s\n", formatOptString(c.AvailabilityDate))
	if c.Latitude != "" && c.Longitude != "" {
		fmt.Fprintf(&b, "Location: <a href=\"https://www.google.com/maps/dir/%f,%f/%s,%s\">Maps</a>\n",
			uc.market.AnchorLat, uc.market.AnchorLon, c.Latitude, c.Longitude)
	}
	fmt.Fprintf(&b, "Metabase link: <a href=\"%s?listing_id=%s\">Metabase</a>", uc.market.DashboardURL, c.ID)
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return "?"
	}
	return formatFloat(*v)
}

func formatOptInt(v *int) string {
	if v == nil {
		return "?"
	}
	return strconv.Itoa(*v)
}

func formatOptString(v *string) string {
	if v == nil {
		return "?"
	}
	return *v
}

func formatOptBool(v *bool) string {
	if v == nil {
		return "?"
	}
	return strconv.FormatBool(*v)
}
