package internal

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Phaust94/oto-parser/internal/adapters/gemini"
	"github.com/Phaust94/oto-parser/internal/adapters/httpfetch"
	"github.com/Phaust94/oto-parser/internal/adapters/nominatim"
	"github.com/Phaust94/oto-parser/internal/adapters/olx"
	"github.com/Phaust94/oto-parser/internal/adapters/otodom"
	postgres_adapter "github.com/Phaust94/oto-parser/internal/adapters/postgres"
	"github.com/Phaust94/oto-parser/internal/adapters/telegram"
	"github.com/Phaust94/oto-parser/internal/configs"
	"github.com/Phaust94/oto-parser/internal/constants"
	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
	"github.com/Phaust94/oto-parser/internal/core/usecase"
	"github.com/Phaust94/oto-parser/pkg/postgres"
)

// sourcePipeline - полный набор use case-ов одной площадки.
type sourcePipeline struct {
	adapter port.SourceAdapterPort

	update     *usecase.UpdateListingsUseCase
	details    *usecase.ProcessMissingDetailsUseCase
	backfill   *usecase.BackfillAIUseCase
	checkAlive *usecase.CheckAliveUseCase
}

// App - структура приложения
type App struct {
	config *configs.AppConfig
	dbPool *pgxpool.Pool
	market domain.MarketConfig

	pipelines []sourcePipeline
	notify    *usecase.NotifyUseCase
	runLog    port.RunLogPort
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	spec, err := constants.MarketByName(appConfig.City)
	if err != nil {
		return nil, fmt.Errorf("error resolving market: %w", err)
	}

	// Статическая спецификация рынка сшивается с переменными окружения
	// в одну конфигурацию, дальше она ходит по компонентам значением.
	market := domain.MarketConfig{
		Name:       spec.Name,
		AnchorLat:  spec.AnchorLat,
		AnchorLon:  spec.AnchorLon,
		SearchURLs: spec.SearchURLs(),
		PageBudget: map[domain.Source]int{
			domain.SourceOtodom: appConfig.Crawl.OtodomPages,
			domain.SourceOLX:    appConfig.Crawl.OLXPages,
		},
		Rules: []domain.EligibilityRule{
			{
				Name:              "regular",
				MinRoomsExclusive: 3,
				MaxTotalRent:      spec.MaxTotalRent,
				MaxDistanceKm:     spec.MaxDistanceKm,
				ThreadID:          appConfig.Telegram.RegularThreadID,
			},
			{
				Name:              "no-distance",
				MinRoomsExclusive: 3,
				MaxTotalRent:      spec.MaxTotalRent,
				ThreadID:          appConfig.Telegram.NoDistanceThreadID,
			},
		},
		ChatID:         appConfig.Telegram.ChatID,
		StatusThreadID: appConfig.Telegram.UpdatesThreadID,
		DashboardURL:   spec.DashboardURL,
	}

	// 1. Низкоуровневые зависимости
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Println("Successfully connected to PostgreSQL pool!")

	fetcher := httpfetch.NewClient()
	log.Println("HTTP fetch client initialized.")

	// 2. Исходящие адаптеры
	storageAdapter, err := postgres_adapter.NewListingStorageAdapter(dbPool)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create listing storage adapter: %w", err)
	}
	runLogRepo, err := postgres_adapter.NewRunLogRepository(dbPool)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create run log repository: %w", err)
	}

	aiExtractor, err := gemini.NewExtractorAdapter(context.Background(), appConfig.AI.APIKey)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create AI extractor: %w", err)
	}

	messenger, err := telegram.NewMessengerAdapter(appConfig.Telegram.BotToken)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create telegram messenger: %w", err)
	}
	log.Println("All outgoing adapters initialized.")

	// 3. Use case-ы ядра, по конвейеру на площадку
	models := usecase.AIModelConfig{
		Primary:  appConfig.AI.Model,
		Fallback: appConfig.AI.FallbackModel,
	}

	otodomAdapter := otodom.NewAdapter(fetcher, market)
	olxAdapter := olx.NewAdapter(fetcher, market)
	// Геокодер нужен только OLX: Otodom отдает координаты сам.
	geocoder := nominatim.NewGeocoder(fetcher)

	pipelines := []sourcePipeline{
		{
			adapter:    otodomAdapter,
			update:     usecase.NewUpdateListingsUseCase(otodomAdapter, storageAdapter, market.PageBudget[domain.SourceOtodom]),
			details:    usecase.NewProcessMissingDetailsUseCase(otodomAdapter, storageAdapter, aiExtractor, nil, market, models),
			backfill:   usecase.NewBackfillAIUseCase(otodomAdapter, storageAdapter, aiExtractor, models),
			checkAlive: usecase.NewCheckAliveUseCase(otodomAdapter, storageAdapter),
		},
		{
			adapter:    olxAdapter,
			update:     usecase.NewUpdateListingsUseCase(olxAdapter, storageAdapter, market.PageBudget[domain.SourceOLX]),
			details:    usecase.NewProcessMissingDetailsUseCase(olxAdapter, storageAdapter, aiExtractor, geocoder, market, models),
			backfill:   usecase.NewBackfillAIUseCase(olxAdapter, storageAdapter, aiExtractor, models),
			checkAlive: usecase.NewCheckAliveUseCase(olxAdapter, storageAdapter),
		},
	}

	notifyUseCase := usecase.NewNotifyUseCase(storageAdapter, messenger, market, map[domain.Source]port.SourceAdapterPort{
		domain.SourceOtodom: otodomAdapter,
		domain.SourceOLX:    olxAdapter,
	})
	log.Println("All use cases initialized.")

	return &App{
		config:    appConfig,
		dbPool:    dbPool,
		market:    market,
		pipelines: pipelines,
		notify:    notifyUseCase,
		runLog:    runLogRepo,
	}, nil
}

// RunDailyUpdate выполняет полный проход обновления: обход выдачи обеих
// площадок, добор деталей и AI-атрибутов, добивочный AI-проход,
// уведомления и итоговая запись в журнал. Все шаги строго
// последовательны.
func (a *App) RunDailyUpdate(ctx context.Context) error {
	log.Printf("App: Starting daily update for market '%s'\n", a.market.Name)
	var touched []domain.ListingKey

	for _, p := range a.pipelines {
		source := p.adapter.Source()

		allPresent, newKeys, err := p.update.Execute(ctx)
		if err != nil {
			return fmt.Errorf("daily update: crawl of '%s' failed: %w", source, err)
		}
		if !allPresent {
			log.Printf("App: source '%s' crawl stopped on page budget, tail may be unseen\n", source)
		}
		touched = appendKeys(touched, newKeys)

		detailKeys, err := p.details.Execute(ctx)
		if err != nil {
			return fmt.Errorf("daily update: detail pass for '%s' failed: %w", source, err)
		}
		touched = appendKeys(touched, detailKeys)

		backfillKeys, err := p.backfill.Execute(ctx)
		if err != nil {
			return fmt.Errorf("daily update: AI backfill for '%s' failed: %w", source, err)
		}
		touched = appendKeys(touched, backfillKeys)
	}

	if err := a.notify.Execute(ctx, touched); err != nil {
		log.Printf("App: notification pass failed: %v\n", err)
	}
	if err := a.notify.SendRunStatus(ctx, len(touched)); err != nil {
		log.Printf("App: failed to send run status: %v\n", err)
	}

	stats := domain.RunStats{Processed: len(touched), FinishedAt: time.Now().UTC()}
	if err := a.runLog.RecordRun(ctx, a.market.Name, "update", stats); err != nil {
		log.Printf("App: failed to record run: %v\n", err)
	}

	log.Printf("App: Daily update finished, %d listings touched\n", len(touched))
	return nil
}

// RunAIBackfill выполняет только добивочный AI-проход по обеим
// площадкам, с уведомлениями по довыясненным объявлениям.
func (a *App) RunAIBackfill(ctx context.Context) error {
	log.Printf("App: Starting AI backfill for market '%s'\n", a.market.Name)
	var touched []domain.ListingKey

	for _, p := range a.pipelines {
		keys, err := p.backfill.Execute(ctx)
		if err != nil {
			return fmt.Errorf("ai backfill: source '%s' failed: %w", p.adapter.Source(), err)
		}
		touched = appendKeys(touched, keys)
	}

	if err := a.notify.Execute(ctx, touched); err != nil {
		log.Printf("App: notification pass failed: %v\n", err)
	}

	stats := domain.RunStats{Processed: len(touched), FinishedAt: time.Now().UTC()}
	if err := a.runLog.RecordRun(ctx, a.market.Name, "ai-backfill", stats); err != nil {
		log.Printf("App: failed to record run: %v\n", err)
	}

	log.Printf("App: AI backfill finished, %d listings touched\n", len(touched))
	return nil
}

// RunLivenessCheck перепроверяет живость всех собранных объявлений
// и шлет итог в статусный тред.
func (a *App) RunLivenessCheck(ctx context.Context) error {
	log.Printf("App: Starting liveness check for market '%s'\n", a.market.Name)
	var aliveTotal, deadTotal int

	for _, p := range a.pipelines {
		alive, dead, err := p.checkAlive.Execute(ctx)
		if err != nil {
			return fmt.Errorf("liveness check: source '%s' failed: %w", p.adapter.Source(), err)
		}
		aliveTotal += len(alive)
		deadTotal += len(dead)
	}

	if err := a.notify.SendLivenessStatus(ctx, aliveTotal, deadTotal); err != nil {
		log.Printf("App: failed to send liveness status: %v\n", err)
	}

	stats := domain.RunStats{Alive: aliveTotal, Dead: deadTotal, FinishedAt: time.Now().UTC()}
	if err := a.runLog.RecordRun(ctx, a.market.Name, "liveness", stats); err != nil {
		log.Printf("App: failed to record run: %v\n", err)
	}

	log.Printf("App: Liveness check finished: %d alive, %d dead\n", aliveTotal, deadTotal)
	return nil
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	if a.dbPool != nil {
		a.dbPool.Close()
	}
	log.Println("App: Resources released.")
}

// appendKeys дописывает ключи без дубликатов: одно объявление может
// быть затронуто и обходом, и добором деталей в одном прогоне.
func appendKeys(dst, src []domain.ListingKey) []domain.ListingKey {
	seen := make(map[domain.ListingKey]bool, len(dst))
	for _, key := range dst {
		seen[key] = true
	}
	for _, key := range src {
		if !seen[key] {
			dst = append(dst, key)
			seen[key] = true
		}
	}
	return dst
}
