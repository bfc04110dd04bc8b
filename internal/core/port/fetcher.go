package port

import "context"

// FetcherPort - транспортный коллаборатор. Любой сетевой или HTTP-сбой
// (таймаут, не-2xx) выражается как nil, наверх ошибки не поднимаются:
// вызывающая сторона сама решает, значит ли nil "страница пуста"
// или "объявление снято".
type FetcherPort interface {
	Fetch(ctx context.Context, url string) []byte
}
