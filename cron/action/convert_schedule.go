package action

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/PedroLeon917/cybdates/common/adapt"
	"github.com/PedroLeon917/cybdates/common/schedule"
	"github.com/PedroLeon917/cybdates/common/sheet"
	"github.com/PedroLeon917/cybdates/common/store"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"time"
)

type ConvertScheduleParams struct {
	InputBucket  string `json:"inputBucket"`
	InputKey     string `json:"inputKey"`
	OutputBucket string `json:"outputBucket"`
	OutputKey    string `json:"outputKey"`
	Parallelism  uint   `json:"parallelism"`
}

type ConvertScheduleOutput struct {
	Id          uuid.UUID `json:"id"`
	Routes      int       `json:"routes"`
	Dates       int       `json:"dates"`
	Rows        int       `json:"rows"`
	SkippedRows int       `json:"skippedRows"`
}

type csAction struct {
	s3c MinimalS3Client
	log *zap.Logger
}

func NewConvertScheduleAction(s3c MinimalS3Client, log *zap.Logger) Action[ConvertScheduleParams, ConvertScheduleOutput] {
	return &csAction{
		s3c: s3c,
		log: log,
	}
}

func (a *csAction) Handle(ctx context.Context, params ConvertScheduleParams) (ConvertScheduleOutput, error) {
	if params.InputBucket == "" || params.InputKey == "" || params.OutputBucket == "" {
		return ConvertScheduleOutput{}, errors.New("inputBucket, inputKey and outputBucket are required")
	}

	log := a.log.With(zap.String("input", params.InputBucket+"/"+params.InputKey))
	log.Info("loading schedule")

	b, err := adapt.S3GetRaw(ctx, a.s3c, params.InputBucket, params.InputKey)
	if err != nil {
		return ConvertScheduleOutput{}, fmt.Errorf("failed to load %s/%s: %w", params.InputBucket, params.InputKey, err)
	}

	rows, err := sheet.Read(bytes.NewReader(b), sheet.DetectFormat(params.InputKey, ""))
	if err != nil {
		return ConvertScheduleOutput{}, fmt.Errorf("failed to read %s: %w", params.InputKey, err)
	}

	idx, tbl, err := schedule.Ingest(ctx, rows, params.Parallelism)
	if err != nil {
		return ConvertScheduleOutput{}, fmt.Errorf("failed to ingest %s: %w", params.InputKey, err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return ConvertScheduleOutput{}, err
	}

	doc := idx.Document()
	doc.Metadata = &schedule.Metadata{
		Id:          id,
		CreatedAt:   time.Now().UTC(),
		Source:      params.InputBucket + "/" + params.InputKey,
		Rows:        tbl.DataRows,
		SkippedRows: tbl.Skipped,
	}

	if err = store.NewS3Store(a.s3c, params.OutputBucket, params.OutputKey).Put(ctx, doc); err != nil {
		return ConvertScheduleOutput{}, err
	}

	output := ConvertScheduleOutput{
		Id:          id,
		Routes:      len(doc.Flights),
		Rows:        tbl.DataRows,
		SkippedRows: tbl.Skipped,
	}

	for _, rr := range doc.Flights {
		output.Dates += len(rr.Dates)
	}

	log.Info(
		"converted schedule",
		zap.Stringer("id", id),
		zap.Int("routes", output.Routes),
		zap.Int("dates", output.Dates),
		zap.Int("skippedRows", output.SkippedRows),
	)

	return output, nil
}
