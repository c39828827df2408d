//go:build !lambda

package config

import (
	"context"
	"github.com/PedroLeon917/cybdates/common/adapt"
	"github.com/PedroLeon917/cybdates/common/local"
	"github.com/PedroLeon917/cybdates/common/store"
	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"os"
	"path/filepath"
)

var Config = accessor{}

type localEnv struct {
	Port             int    `env:"FLIGHTS_PORT" env-default:"8080"`
	DataBucket       string `env:"FLIGHTS_DATA_BUCKET" env-default:"flights_data_bucket"`
	LocalS3Path      string `env:"FLIGHTS_LOCAL_S3_PATH"`
	StoreKey         string `env:"FLIGHTS_STORE_KEY"`
	RedisAddr        string `env:"FLIGHTS_REDIS_ADDR"`
	RedisPassword    string `env:"FLIGHTS_REDIS_PASSWORD"`
	DuckDBPath       string `env:"FLIGHTS_DUCKDB_PATH"`
	Parallelism      uint   `env:"FLIGHTS_PARALLELISM" env-default:"0"`
	UploadsPerMinute int    `env:"FLIGHTS_UPLOADS_PER_MINUTE" env-default:"60"`
}

type accessor struct{}

func (accessor) env() (localEnv, error) {
	var env localEnv
	if err := cleanenv.ReadEnv(&env); err != nil {
		return localEnv{}, err
	}

	return env, nil
}

func (a accessor) EchoPort() int {
	env, err := a.env()
	if err != nil {
		return 8080
	}

	return env.Port
}

func (accessor) Logger() (*zap.Logger, error) {
	return zap.NewDevelopment()
}

func (a accessor) S3Client(ctx context.Context) (adapt.S3Client, error) {
	env, err := a.env()
	if err != nil {
		return nil, err
	}

	basePath := env.LocalS3Path
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		basePath = filepath.Join(home, "Downloads", "local_s3")
	}

	return local.NewS3Client(basePath), nil
}

func (a accessor) DataBucket() (string, error) {
	env, err := a.env()
	if err != nil {
		return "", err
	}

	return env.DataBucket, nil
}

func (a accessor) Store(ctx context.Context) (store.Store, func() error, error) {
	env, err := a.env()
	if err != nil {
		return nil, nil, err
	}

	s3c, err := a.S3Client(ctx)
	if err != nil {
		return nil, nil, err
	}

	return newStore(ctx, s3c, env.DataBucket, storeConfig{
		RedisAddr:     env.RedisAddr,
		RedisPassword: env.RedisPassword,
		RedisKey:      env.StoreKey,
		DuckDBPath:    env.DuckDBPath,
		S3Key:         env.StoreKey,
	})
}

func (a accessor) Parallelism() uint {
	env, err := a.env()
	if err != nil {
		return 0
	}

	return env.Parallelism
}

func (a accessor) UploadLimiter() *rate.Limiter {
	env, err := a.env()
	if err != nil {
		return uploadLimiter(0)
	}

	return uploadLimiter(env.UploadsPerMinute)
}
