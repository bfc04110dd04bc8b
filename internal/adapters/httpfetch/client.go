package httpfetch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// Client - общий HTTP-транспорт конвейера поверх настроенного
// colly.Collector. Один экземпляр разделяется всеми площадками:
// лимиты вежливости применяются ко всему исходящему трафику сразу.
type Client struct {
	// Родительский коллектор; каждый запрос выполняется его клоном,
	// клоны наследуют лимиты и расширения.
	collector *colly.Collector
}

// NewClient создает транспорт с единой политикой вежливости.
func NewClient() *Client {
	c := colly.NewCollector()

	// Параллелизм 1: конвейер строго последовательный, и транспорт
	// выстраивает все вызовы в одну очередь. Случайная задержка
	// делает поведение менее похожим на робота.
	err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		RandomDelay: 3 * time.Second,
	})
	if err != nil {
		log.Fatalf("HTTPFetch: Failed to set limit rule: %v", err)
	}

	// Маскировка: живой User-Agent на каждый запрос плюс Referer,
	// имитирующий навигацию.
	extensions.RandomUserAgent(c)
	extensions.Referer(c)

	// Обе площадки отдают выдачу по одному и тому же URL с разными
	// номерами страниц, повторные визиты - норма.
	c.AllowURLRevisit = true

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "*/*")
		r.Headers.Set("Connection", "keep-alive")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
	})

	return &Client{collector: c}
}

// Fetch грузит страницу и возвращает тело ответа. Любой сбой
// (таймаут, не-2xx) выражается как nil: трактовка nil - забота
// вызывающей стороны.
func (c *Client) Fetch(ctx context.Context, url string) []byte {
	collector := c.collector.Clone()

	var (
		mu   sync.Mutex
		body []byte
	)

	collector.OnResponse(func(r *colly.Response) {
		mu.Lock()
		defer mu.Unlock()
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		log.Printf("HTTPFetch: request to %s failed: status=%d, error=%v\n", r.Request.URL, r.StatusCode, err)
	})

	if err := collector.Request("GET", url, nil, colly.NewContext(), nil); err != nil {
		log.Printf("HTTPFetch: failed to start request to %s: %v\n", url, err)
		return nil
	}
	collector.Wait()

	select {
	case <-ctx.Done():
		return nil
	default:
	}

	mu.Lock()
	defer mu.Unlock()
	return body
}
