package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/domain/providers"
	"github.com/andesalud/clinica-backend/internal/domain/repositories"
)

// CachedTariffAdapter wraps TariffAdapter with caching. Tariffs are
// read-only at runtime, so a generous TTL is safe; Upsert invalidates.
type CachedTariffAdapter struct {
	adapter repositories.TariffRepository
	cache   providers.CacheProvider
}

// NewCachedTariffAdapter creates a new cached tariff adapter
func NewCachedTariffAdapter(adapter repositories.TariffRepository, cache providers.CacheProvider) repositories.TariffRepository {
	return &CachedTariffAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	tariffBySpecialtyTTL = 1800 // 30 minutes for a single tariff
	tariffListTTL        = 600  // 10 minutes for lists
)

func tariffCacheKey(specialty string) string {
	return fmt.Sprintf("tariff:%s", specialty)
}

func tariffListCacheKey(filter repositories.TariffFilter) string {
	return fmt.Sprintf("tariffs:list:%d:%d", filter.Limit, filter.Offset)
}

// GetBySpecialty retrieves a tariff with caching
func (a *CachedTariffAdapter) GetBySpecialty(ctx context.Context, specialty string) (*entities.Tariff, error) {
	cacheKey := tariffCacheKey(specialty)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var tariff entities.Tariff
		if err := json.Unmarshal(cached, &tariff); err == nil {
			return &tariff, nil
		}
		log.Printf("Failed to unmarshal cached tariff %s: %v", specialty, err)
	}

	tariff, err := a.adapter.GetBySpecialty(ctx, specialty)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(tariff); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, tariffBySpecialtyTTL); err != nil {
				log.Printf("Failed to cache tariff %s: %v", specialty, err)
			}
		}
	}()

	return tariff, nil
}

// List retrieves tariffs with caching
func (a *CachedTariffAdapter) List(ctx context.Context, filter repositories.TariffFilter) ([]*entities.Tariff, error) {
	cacheKey := tariffListCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var tariffs []*entities.Tariff
		if err := json.Unmarshal(cached, &tariffs); err == nil {
			return tariffs, nil
		}
	}

	tariffs, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(tariffs); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, tariffListTTL); err != nil {
				log.Printf("Failed to cache tariff list: %v", err)
			}
		}
	}()

	return tariffs, nil
}

// Upsert writes through and invalidates the cached entries
func (a *CachedTariffAdapter) Upsert(ctx context.Context, tariff *entities.Tariff) error {
	if err := a.adapter.Upsert(ctx, tariff); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, tariffCacheKey(tariff.Specialty)); err != nil {
		log.Printf("Failed to invalidate cached tariff %s: %v", tariff.Specialty, err)
	}
	return nil
}
