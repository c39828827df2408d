package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/PedroLeon917/cybdates/common/logging"
	"github.com/PedroLeon917/cybdates/cron/action"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"syscall"
)

type InputEvent struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log, err := logging.New(zap.String("function", os.Getenv("AWS_LAMBDA_FUNCTION_NAME")))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal("failed to load aws config", zap.Error(err))
	}

	lambda.StartWithOptions(newHandler(s3.NewFromConfig(cfg), log), lambda.WithContext(ctx))
}

func newHandler(s3c action.MinimalS3Client, log *zap.Logger) func(ctx context.Context, event InputEvent) (json.RawMessage, error) {
	csAction := action.NewConvertScheduleAction(s3c, log)

	return func(ctx context.Context, event InputEvent) (json.RawMessage, error) {
		switch event.Action {
		case "convert_schedule":
			return handle(ctx, csAction, event.Params)
		}

		return nil, fmt.Errorf("unsupported action: %v", event.Action)
	}
}

func handle[IN any, OUT any](ctx context.Context, act action.Action[IN, OUT], params json.RawMessage) (json.RawMessage, error) {
	var input IN
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, err
	}

	output, err := act.Handle(ctx, input)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}

	return b, nil
}
