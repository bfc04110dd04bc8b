package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DBconfig хранит конфигурацию для БД
type DBconfig struct {
	URL string
}

// AIConfig хранит конфигурацию платформы извлечения
type AIConfig struct {
	APIKey        string
	Model         string
	FallbackModel string
}

// TelegramConfig хранит конфигурацию доставки уведомлений.
// Идентификаторы чата и тредов различаются по городам, поэтому
// читаются с суффиксом города: TG_CHAT_ID_WARSAW и т.д.
type TelegramConfig struct {
	BotToken string

	ChatID             string
	RegularThreadID    int
	UpdatesThreadID    int
	NoDistanceThreadID int
}

// CrawlConfig хранит бюджеты страниц обхода по площадкам
type CrawlConfig struct {
	OtodomPages int
	OLXPages    int
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	City     string
	Database DBconfig
	AI       AIConfig
	Telegram TelegramConfig
	Crawl    CrawlConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		// Файл опционален: в контейнере переменные приходят из окружения.
		log.Printf("Info: Could not load .env file (path: %v): %v.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.City = os.Getenv("CITY")
	if cfg.City == "" {
		return nil, fmt.Errorf("CITY environment variable is required")
	}
	citySuffix := strings.ToUpper(cfg.City)

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg.AI.APIKey = os.Getenv("AI_PLATFORM_API_KEY")
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("AI_PLATFORM_API_KEY environment variable is required")
	}
	cfg.AI.Model = getEnvAsString("AI_MODEL", "gemini-2.0-flash")
	cfg.AI.FallbackModel = getEnvAsString("AI_FALLBACK_MODEL", "gemini-2.0-flash-lite")

	cfg.Telegram.BotToken = os.Getenv("TG_BOT_TOKEN")
	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("TG_BOT_TOKEN environment variable is required")
	}
	cfg.Telegram.ChatID = os.Getenv("TG_CHAT_ID_" + citySuffix)
	if cfg.Telegram.ChatID == "" {
		return nil, fmt.Errorf("TG_CHAT_ID_%s environment variable is required", citySuffix)
	}
	cfg.Telegram.RegularThreadID = getEnvAsInt("TG_REGULAR_THREAD_ID_"+citySuffix, 0)
	cfg.Telegram.UpdatesThreadID = getEnvAsInt("TG_UPDATES_THREAD_ID_"+citySuffix, 0)
	cfg.Telegram.NoDistanceThreadID = getEnvAsInt("TG_NO_DISTANCE_THREAD_ID_"+citySuffix, 0)

	cfg.Crawl.OtodomPages = getEnvAsInt("OTODOM_PAGES", 36)
	cfg.Crawl.OLXPages = getEnvAsInt("OLX_PAGES", 25)

	return cfg, nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}
