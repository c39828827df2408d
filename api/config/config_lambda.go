//go:build lambda

package config

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"github.com/PedroLeon917/cybdates/common/adapt"
	"github.com/PedroLeon917/cybdates/common/logging"
	"github.com/PedroLeon917/cybdates/common/store"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"os"
	"strconv"
	"sync"
)

var Config = &accessor{
	awsConfig: sync.OnceValues(func() (aws.Config, error) {
		return config.LoadDefaultConfig(context.Background())
	}),
}

type accessor struct {
	awsConfig func() (aws.Config, error)
}

func (*accessor) EchoPort() int {
	port, _ := strconv.Atoi(os.Getenv("AWS_LWA_PORT"))
	return cmp.Or(port, 8080)
}

func (*accessor) Logger() (*zap.Logger, error) {
	return logging.New(zap.String("function", os.Getenv("AWS_LAMBDA_FUNCTION_NAME")))
}

func (a *accessor) S3Client(ctx context.Context) (adapt.S3Client, error) {
	cfg, err := a.awsConfig()
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg), nil
}

func (*accessor) DataBucket() (string, error) {
	bucket := os.Getenv("FLIGHTS_DATA_BUCKET")
	if bucket == "" {
		return "", errors.New("env variable FLIGHTS_DATA_BUCKET required")
	}

	return bucket, nil
}

func (a *accessor) Store(ctx context.Context) (store.Store, func() error, error) {
	s3c, err := a.S3Client(ctx)
	if err != nil {
		return nil, nil, err
	}

	cfg := storeConfig{
		RedisAddr:  os.Getenv("FLIGHTS_REDIS_ADDR"),
		RedisKey:   os.Getenv("FLIGHTS_STORE_KEY"),
		DuckDBPath: os.Getenv("FLIGHTS_DUCKDB_PATH"),
		S3Key:      os.Getenv("FLIGHTS_STORE_KEY"),
	}

	if cfg.RedisAddr != "" {
		awsCfg, err := a.awsConfig()
		if err != nil {
			return nil, nil, err
		}

		params, err := loadSsmParams(ctx, awsCfg, "FLIGHTS_SSM_REDIS_PASSWORD")
		if err != nil {
			return nil, nil, err
		}

		cfg.RedisPassword = params["FLIGHTS_SSM_REDIS_PASSWORD"]
	}

	bucket, err := a.DataBucket()
	if err != nil && cfg.RedisAddr == "" && cfg.DuckDBPath == "" {
		return nil, nil, err
	}

	return newStore(ctx, s3c, bucket, cfg)
}

func (*accessor) Parallelism() uint {
	parallelism, _ := strconv.ParseUint(os.Getenv("FLIGHTS_PARALLELISM"), 10, 32)
	return uint(parallelism)
}

func (*accessor) UploadLimiter() *rate.Limiter {
	perMinute, _ := strconv.Atoi(os.Getenv("FLIGHTS_UPLOADS_PER_MINUTE"))
	return uploadLimiter(cmp.Or(perMinute, 60))
}

func loadSsmParams(ctx context.Context, cfg aws.Config, envNames ...string) (map[string]string, error) {
	reqNames := make([]string, 0, len(envNames))
	lookup := make(map[string]string)

	for _, envName := range envNames {
		reqName := os.Getenv(envName)
		if reqName == "" {
			return nil, fmt.Errorf("env variable %s required", envName)
		}

		reqNames = append(reqNames, reqName)
		lookup[reqName] = envName
	}

	ssmc := ssm.NewFromConfig(cfg)
	resp, err := ssmc.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          reqNames,
		WithDecryption: aws.Bool(true),
	})

	if err != nil {
		return nil, err
	} else if len(resp.InvalidParameters) > 0 {
		return nil, fmt.Errorf("ssm invalid parameters: %v", resp.InvalidParameters)
	}

	result := make(map[string]string)
	for _, p := range resp.Parameters {
		result[lookup[*p.Name]] = *p.Value
	}

	return result, nil
}
