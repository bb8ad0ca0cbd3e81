package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
	basecache "github.com/riskibarqy/scout-pro/internal/platform/cache"
)

const (
	playerListKey  = "player:list"
	playerIDPrefix = "player:id:"
	alertPrefix    = "alert:"
	alertActiveKey = "alert:active"
)

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Profile, error) {
	v, err := r.cache.GetOrLoad(ctx, playerListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]player.Profile(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Profile)
	return append([]player.Profile(nil), items...), nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Profile, bool, error) {
	key := playerIDPrefix + strconv.FormatInt(id, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedPlayerByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Profile{}, false, err
	}

	cached, _ := v.(cachedPlayerByID)
	return cached.value, cached.exists, nil
}

type cachedPlayerByID struct {
	value  player.Profile
	exists bool
}

type AlertRepository struct {
	next  alert.Repository
	cache *basecache.Store
}

func NewAlertRepository(next alert.Repository, cache *basecache.Store) *AlertRepository {
	return &AlertRepository{next: next, cache: cache}
}

func (r *AlertRepository) ListActive(ctx context.Context) ([]alert.Alert, error) {
	v, err := r.cache.GetOrLoad(ctx, alertActiveKey, func(ctx context.Context) (any, error) {
		items, err := r.next.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return append([]alert.Alert(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]alert.Alert)
	return append([]alert.Alert(nil), items...), nil
}

func (r *AlertRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	changed, err := r.next.Deactivate(ctx, id)
	if err != nil {
		return false, err
	}
	if changed {
		r.cache.DeletePrefix(ctx, alertPrefix)
	}
	return changed, nil
}
