package config

import (
	"context"
	"errors"
	"github.com/PedroLeon917/cybdates/common/adapt"
	"github.com/PedroLeon917/cybdates/common/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"time"
)

var _ Accessor = Config

type Accessor interface {
	EchoPort() int
	Logger() (*zap.Logger, error)
	S3Client(ctx context.Context) (adapt.S3Client, error)
	DataBucket() (string, error)
	Store(ctx context.Context) (store.Store, func() error, error)
	Parallelism() uint
	UploadLimiter() *rate.Limiter
}

type storeConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisKey      string
	DuckDBPath    string
	S3Key         string
}

// newStore picks DuckDB if a database path is configured, Redis if an address is configured and S3 otherwise.
func newStore(ctx context.Context, s3c adapt.S3Client, bucket string, cfg storeConfig) (store.Store, func() error, error) {
	switch {
	case cfg.DuckDBPath != "":
		s, err := store.NewDuckDBStore(ctx, cfg.DuckDBPath)
		if err != nil {
			return nil, nil, err
		}

		return s, s.Close, nil

	case cfg.RedisAddr != "":
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})

		return store.NewRedisStore(rc, cfg.RedisKey), rc.Close, nil

	default:
		if bucket == "" {
			return nil, nil, errors.New("a data bucket is required for the s3 store")
		}

		return store.NewS3Store(s3c, bucket, cfg.S3Key), func() error { return nil }, nil
	}
}

func uploadLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}
