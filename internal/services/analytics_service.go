package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/config"
	"github.com/peermarket/backend/internal/events"
	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/repositories"
)

// AnalyticsService is the write-side event sink plus the read-side
// aggregates. Record is strictly best-effort: the negotiation engine and
// the catalog call it as a side effect and never see its failures.
type AnalyticsService struct {
	repo      *repositories.AnalyticsRepo
	rdb       *redis.Client
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewAnalyticsService(repo *repositories.AnalyticsRepo, rdb *redis.Client, publisher events.Publisher, cfg *config.Config, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, rdb: rdb, publisher: publisher, cfg: cfg, log: log}
}

// Record persists an event and publishes it on the analytics stream.
// Failures are logged and swallowed.
func (s *AnalyticsService) Record(ctx context.Context, e models.AnalyticsEvent) {
	if err := s.repo.Insert(ctx, &e); err != nil {
		s.log.Warn("analytics insert failed", zap.String("event_type", e.EventType), zap.Error(err))
		return
	}

	payload := map[string]any{"event_type": e.EventType}
	if e.ProductID != nil {
		payload["product_id"] = e.ProductID.String()
	}
	if e.NegotiationID != nil {
		payload["negotiation_id"] = e.NegotiationID.String()
	}
	if err := s.publisher.Publish(ctx, "events:analytics", events.Event{
		Type:    events.EventAnalyticsRecorded,
		Payload: payload,
	}); err != nil {
		s.log.Warn("analytics event publish failed", zap.Error(err))
	}
}

func topProductsKey(eventType string) string {
	return fmt.Sprintf("analytics:top_products:%s", eventType)
}

// TopProducts serves the cached projection maintained by the worker,
// falling back to a live aggregate (and repopulating the cache) on miss.
func (s *AnalyticsService) TopProducts(ctx context.Context, eventType string, limit int) ([]models.TopProduct, error) {
	cached, err := s.rdb.Get(ctx, topProductsKey(eventType)).Result()
	if err == nil {
		var top []models.TopProduct
		if jsonErr := json.Unmarshal([]byte(cached), &top); jsonErr == nil {
			if limit > 0 && limit < len(top) {
				top = top[:limit]
			}
			return top, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn("top products cache read failed", zap.Error(err))
	}

	top, err := s.repo.TopProducts(ctx, eventType, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "top products aggregate failed", err)
	}
	s.cacheTopProducts(ctx, eventType, top)
	return top, nil
}

func (s *AnalyticsService) ByLocation(ctx context.Context, eventType string, limit int) ([]models.LocationCount, error) {
	counts, err := s.repo.CountByLocation(ctx, eventType, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "location aggregate failed", err)
	}
	return counts, nil
}

// RefreshTopProducts rebuilds the cached projections. Called by the worker
// on a ticker.
func (s *AnalyticsService) RefreshTopProducts(ctx context.Context) error {
	for _, eventType := range []string{models.EventProductView, models.EventProductClick, models.EventWishlistAdd} {
		top, err := s.repo.TopProducts(ctx, eventType, 20)
		if err != nil {
			return err
		}
		s.cacheTopProducts(ctx, eventType, top)
	}
	return nil
}

func (s *AnalyticsService) cacheTopProducts(ctx context.Context, eventType string, top []models.TopProduct) {
	data, err := json.Marshal(top)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, topProductsKey(eventType), data, s.cfg.TopProductsCacheTTL).Err(); err != nil {
		s.log.Warn("top products cache write failed", zap.Error(err))
	}
}
