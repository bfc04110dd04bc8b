package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// ListingStorageAdapter реализует ListingStoragePort для PostgreSQL.
// Все Save* - слияющие upsert-ы: в запрос попадают только переданные
// (не-nil) поля, поэтому повторное сохранение не затирает уже
// известные значения отсутствующими.
type ListingStorageAdapter struct {
	pool *pgxpool.Pool
}

// NewListingStorageAdapter создает новый экземпляр адаптера.
func NewListingStorageAdapter(pool *pgxpool.Pool) (*ListingStorageAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ListingStorageAdapter{pool: pool}, nil
}

// SaveSummary сохраняет сводку из поисковой выдачи в listing_items.
func (a *ListingStorageAdapter) SaveSummary(ctx context.Context, s domain.ListingSummary) error {
	b := newMergeUpsert("listing_items")
	b.add("source", string(s.Source))
	b.add("listing_id", s.ID)
	b.add("title", s.Title)
	b.add("slug", s.Slug)
	b.add("updated_at", time.Now().UTC())
	addOpt(b, "rent_price", s.RentPrice)
	addOpt(b, "administrative_price", s.AdministrativePrice)
	addOpt(b, "area_m2", s.AreaM2)
	addOpt(b, "rooms", s.Rooms)
	addOpt(b, "street", s.Street)
	addOpt(b, "street_number", s.StreetNumber)
	addOpt(b, "district", s.District)
	addOpt(b, "district_specific", s.DistrictSpecific)
	addOpt(b, "created_on", s.CreatedOn)

	sql, values := b.build()
	if _, err := a.pool.Exec(ctx, sql, values...); err != nil {
		return fmt.Errorf("failed to upsert listing summary %s: %w", s.Key(), err)
	}
	return nil
}

// SaveDetail сохраняет разобранную карточку в listing_metadata.
func (a *ListingStorageAdapter) SaveDetail(ctx context.Context, d domain.ListingDetail) error {
	b := newMergeUpsert("listing_metadata")
	b.add("source", string(d.Source))
	b.add("listing_id", d.ID)
	b.add("has_ac", d.HasAC)
	b.add("has_lift", d.HasLift)
	b.add("description_long", d.DescriptionLong)
	b.add("raw_info", d.RawInfo)
	b.add("updated_at", time.Now().UTC())
	addOpt(b, "floor", d.Floor)
	addOpt(b, "floors_total", d.FloorsTotal)
	addOpt(b, "deposit", d.Deposit)
	addOpt(b, "windows", d.Windows)
	addOpt(b, "available_from", d.AvailableFrom)
	if d.Latitude != "" {
		b.add("latitude", d.Latitude)
		b.add("longitude", d.Longitude)
		b.add("distance_from_center_km", d.DistanceFromCenterKm)
	}

	sql, values := b.build()
	if _, err := a.pool.Exec(ctx, sql, values...); err != nil {
		return fmt.Errorf("failed to upsert listing detail %s: %w", d.Key(), err)
	}
	return nil
}

// SaveGone помечает объявление снятым. Повторная пометка безвредна.
func (a *ListingStorageAdapter) SaveGone(ctx context.Context, g domain.GoneMarker) error {
	query := `
        INSERT INTO irrelevant_listings (source, listing_id, marked_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (source, listing_id) DO NOTHING
    `
	if _, err := a.pool.Exec(ctx, query, string(g.Source), g.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark listing %s/%s gone: %w", g.Source, g.ID, err)
	}
	return nil
}

// SaveAIFacts сохраняет извлеченные моделью атрибуты в listing_ai_metadata.
func (a *ListingStorageAdapter) SaveAIFacts(ctx context.Context, f domain.AIFacts) error {
	b := newMergeUpsert("listing_ai_metadata")
	b.add("source", string(f.Source))
	b.add("listing_id", f.ID)
	addOpt(b, "allowed_with_pets", f.AllowedWithPets)
	addOpt(b, "availability_date", f.AvailabilityDate)
	addOpt(b, "bedroom_number", f.BedroomNumber)
	addOpt(b, "kitchen_combined_with_living_room", f.KitchenCombinedWithLivingRoom)
	addOpt(b, "occasional_lease", f.OccasionalLease)
	addOpt(b, "street", f.Street)
	addOpt(b, "deposit", f.Deposit)
	addOpt(b, "updated_at", f.UpdatedAt)

	sql, values := b.build()
	if _, err := a.pool.Exec(ctx, sql, values...); err != nil {
		return fmt.Errorf("failed to upsert AI facts for %s/%s: %w", f.Source, f.ID, err)
	}
	return nil
}

// SummaryExists проверяет присутствие объявления в listing_items.
func (a *ListingStorageAdapter) SummaryExists(ctx context.Context, key domain.ListingKey) (bool, error) {
	var one int
	query := `SELECT 1 FROM listing_items WHERE source = $1 AND listing_id = $2`
	err := a.pool.QueryRow(ctx, query, string(key.Source), key.ID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check presence of %s: %w", key, err)
	}
	return true, nil
}

// MissingDetails возвращает объявления площадки без разрешенного
// состояния: нет ни карточки, ни пометки снятого.
func (a *ListingStorageAdapter) MissingDetails(ctx context.Context, source domain.Source) ([]domain.BacklogItem, error) {
	query := `
        SELECT li.listing_id, li.slug
        FROM listing_items li
        WHERE li.source = $1
          AND NOT EXISTS (
              SELECT 1 FROM listing_metadata m
              WHERE m.source = li.source AND m.listing_id = li.listing_id)
          AND NOT EXISTS (
              SELECT 1 FROM irrelevant_listings ir
              WHERE ir.source = li.source AND ir.listing_id = li.listing_id)
        ORDER BY li.listing_id
    `
	rows, err := a.pool.Query(ctx, query, string(source))
	if err != nil {
		return nil, fmt.Errorf("failed to query details backlog for '%s': %w", source, err)
	}
	defer rows.Close()

	var items []domain.BacklogItem
	for rows.Next() {
		var item domain.BacklogItem
		if err := rows.Scan(&item.ID, &item.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan details backlog row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MissingAI возвращает объявления с карточкой, но без успешного
// AI-извлечения, вместе с сохраненными текстами для промпта.
func (a *ListingStorageAdapter) MissingAI(ctx context.Context, source domain.Source) ([]domain.AIBacklogItem, error) {
	query := `
        SELECT li.listing_id, li.slug, m.raw_info, m.description_long, ai.updated_at
        FROM listing_items li
        JOIN listing_metadata m
          ON m.source = li.source AND m.listing_id = li.listing_id
        LEFT JOIN listing_ai_metadata ai
          ON ai.source = li.source AND ai.listing_id = li.listing_id
        WHERE li.source = $1
          AND ai.updated_at IS NULL
          AND NOT EXISTS (
              SELECT 1 FROM irrelevant_listings ir
              WHERE ir.source = li.source AND ir.listing_id = li.listing_id)
        ORDER BY li.listing_id
    `
	rows, err := a.pool.Query(ctx, query, string(source))
	if err != nil {
		return nil, fmt.Errorf("failed to query AI backlog for '%s': %w", source, err)
	}
	defer rows.Close()

	var items []domain.AIBacklogItem
	for rows.Next() {
		var item domain.AIBacklogItem
		if err := rows.Scan(&item.ID, &item.Slug, &item.RawInfo, &item.DescriptionLong, &item.AIUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan AI backlog row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AliveListings возвращает все объявления площадки, не помеченные снятыми.
func (a *ListingStorageAdapter) AliveListings(ctx context.Context, source domain.Source) ([]domain.BacklogItem, error) {
	query := `
        SELECT li.listing_id, li.slug
        FROM listing_items li
        WHERE li.source = $1
          AND NOT EXISTS (
              SELECT 1 FROM irrelevant_listings ir
              WHERE ir.source = li.source AND ir.listing_id = li.listing_id)
        ORDER BY li.listing_id
    `
	rows, err := a.pool.Query(ctx, query, string(source))
	if err != nil {
		return nil, fmt.Errorf("failed to query alive listings for '%s': %w", source, err)
	}
	defer rows.Close()

	var items []domain.BacklogItem
	for rows.Next() {
		var item domain.BacklogItem
		if err := rows.Scan(&item.ID, &item.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan alive listing row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PatchCoordinates дописывает геокодированные координаты в уже
// сохраненную карточку.
func (a *ListingStorageAdapter) PatchCoordinates(ctx context.Context, key domain.ListingKey, lat, lon string, distanceKm float64) error {
	query := `
        UPDATE listing_metadata
        SET latitude = $3, longitude = $4, distance_from_center_km = $5
        WHERE source = $1 AND listing_id = $2
    `
	if _, err := a.pool.Exec(ctx, query, string(key.Source), key.ID, lat, lon, distanceKm); err != nil {
		return fmt.Errorf("failed to patch coordinates for %s: %w", key, err)
	}
	return nil
}

// NotifyCandidates сшивает сводку, карточку и AI-атрибуты затронутых
// объявлений. Снятые и уже разрешенные вручную отфильтрованы здесь же.
func (a *ListingStorageAdapter) NotifyCandidates(ctx context.Context, keys []domain.ListingKey) ([]domain.NotifyCandidate, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	keyFilter, values := buildKeyFilter(keys)
	query := fmt.Sprintf(`
        SELECT li.source, li.listing_id, li.title, li.slug,
               li.rent_price, li.administrative_price, li.area_m2, li.rooms,
               li.district, li.district_specific,
               COALESCE(m.latitude, ''), COALESCE(m.longitude, ''),
               COALESCE(m.distance_from_center_km, 0),
               ai.allowed_with_pets, ai.availability_date, ai.bedroom_number,
               ai.kitchen_combined_with_living_room, ai.occasional_lease
        FROM listing_items li
        JOIN listing_metadata m
          ON m.source = li.source AND m.listing_id = li.listing_id
        LEFT JOIN listing_ai_metadata ai
          ON ai.source = li.source AND ai.listing_id = li.listing_id
        WHERE li.our_decision IS NULL
          AND NOT EXISTS (
              SELECT 1 FROM irrelevant_listings ir
              WHERE ir.source = li.source AND ir.listing_id = li.listing_id)
          AND (li.source, li.listing_id) IN (%s)
        ORDER BY li.listing_id
    `, keyFilter)

	rows, err := a.pool.Query(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notify candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.NotifyCandidate
	for rows.Next() {
		var c domain.NotifyCandidate
		var source string
		err := rows.Scan(
			&source, &c.ID, &c.Title, &c.Slug,
			&c.RentPrice, &c.AdministrativePrice, &c.AreaM2, &c.Rooms,
			&c.District, &c.DistrictSpecific,
			&c.Latitude, &c.Longitude, &c.DistanceKm,
			&c.AllowedWithPets, &c.AvailabilityDate, &c.BedroomNumber,
			&c.KitchenCombined, &c.OccasionalLease,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notify candidate row: %w", err)
		}
		c.Source = domain.Source(source)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// buildKeyFilter собирает плейсхолдеры составных ключей для IN-фильтра
// и значения к ним.
func buildKeyFilter(keys []domain.ListingKey) (string, []interface{}) {
	pairs := make([]string, 0, len(keys))
	values := make([]interface{}, 0, len(keys)*2)
	for i, key := range keys {
		pairs = append(pairs, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		values = append(values, string(key.Source), key.ID)
	}
	return strings.Join(pairs, ", "), values
}

// CREATE TABLE IF NOT EXISTS listing_items (
//     source VARCHAR(16) NOT NULL,
//     listing_id VARCHAR(64) NOT NULL,
//     title TEXT NOT NULL DEFAULT '',
//     slug TEXT NOT NULL DEFAULT '',
//     rent_price DOUBLE PRECISION,
//     administrative_price DOUBLE PRECISION,
//     area_m2 DOUBLE PRECISION,
//     rooms INT,
//     street TEXT,
//     street_number TEXT,
//     district TEXT,
//     district_specific TEXT,
//     created_on TIMESTAMPTZ,
//     our_decision TEXT,
//     updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//     PRIMARY KEY (source, listing_id)
// );

// CREATE TABLE IF NOT EXISTS listing_metadata (
//     source VARCHAR(16) NOT NULL,
//     listing_id VARCHAR(64) NOT NULL,
//     floor INT,
//     floors_total INT,
//     deposit INT,
//     has_ac BOOLEAN NOT NULL DEFAULT FALSE,
//     has_lift BOOLEAN NOT NULL DEFAULT FALSE,
//     windows TEXT,
//     available_from TEXT,
//     description_long TEXT NOT NULL DEFAULT '',
//     raw_info TEXT NOT NULL DEFAULT '',
//     latitude TEXT,
//     longitude TEXT,
//     distance_from_center_km DOUBLE PRECISION,
//     updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//     PRIMARY KEY (source, listing_id)
// );

// CREATE TABLE IF NOT EXISTS irrelevant_listings (
//     source VARCHAR(16) NOT NULL,
//     listing_id VARCHAR(64) NOT NULL,
//     marked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//     PRIMARY KEY (source, listing_id)
// );

// CREATE TABLE IF NOT EXISTS listing_ai_metadata (
//     source VARCHAR(16) NOT NULL,
//     listing_id VARCHAR(64) NOT NULL,
//     allowed_with_pets BOOLEAN,
//     availability_date TEXT,
//     bedroom_number INT,
//     kitchen_combined_with_living_room BOOLEAN,
//     occasional_lease BOOLEAN,
//     street TEXT,
//     deposit DOUBLE PRECISION,
//     updated_at TIMESTAMPTZ,
//     PRIMARY KEY (source, listing_id)
// );
