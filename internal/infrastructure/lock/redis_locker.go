// Package lock implementa el lock distribuido por local sobre Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/pkg/config"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

const (
	keyPrefix      = "cmv:recalc:venue"
	releaseTimeout = 2 * time.Second
)

// NewRedisClient conecta a Redis y verifica con PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// RedisVenueLocker serializa recálculos masivos del mismo local entre réplicas.
type RedisVenueLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisVenueLocker construye el locker. ttl acota cuánto puede durar un recálculo.
func NewRedisVenueLocker(rdb redislock.RedisClient, ttl time.Duration, log *logger.Logger) *RedisVenueLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisVenueLocker{client: redislock.New(rdb), ttl: ttl, log: log}
}

// Key clave Redis del lock de un local.
func Key(venueID int64) string {
	return fmt.Sprintf("%s:%d", keyPrefix, venueID)
}

// Lock no espera: si otro proceso tiene el lock devuelve domain.ErrLockNotObtained.
func (l *RedisVenueLocker) Lock(ctx context.Context, venueID int64) (func(), error) {
	lk, err := l.client.Obtain(ctx, Key(venueID), l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtener lock del local %d: %w", venueID, err)
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := lk.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Int64("venue_id", venueID).Msg("no se pudo liberar el lock")
		}
	}, nil
}
