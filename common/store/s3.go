package store

import (
	"context"
	"fmt"
	"github.com/PedroLeon917/cybdates/common/adapt"
	"github.com/PedroLeon917/cybdates/common/schedule"
)

const DefaultS3Key = "flights.json"

type S3Store struct {
	s3c    adapt.S3Client
	bucket string
	key    string
}

func NewS3Store(s3c adapt.S3Client, bucket, key string) *S3Store {
	if key == "" {
		key = DefaultS3Key
	}

	return &S3Store{
		s3c:    s3c,
		bucket: bucket,
		key:    key,
	}
}

func (s *S3Store) Get(ctx context.Context) (schedule.Document, error) {
	var doc schedule.Document
	if err := adapt.S3GetJson(ctx, s.s3c, s.bucket, s.key, &doc); err != nil {
		if adapt.IsS3NotFound(err) {
			return schedule.Document{}, ErrNotFound
		}

		return schedule.Document{}, fmt.Errorf("s3 get %s/%s: %w", s.bucket, s.key, err)
	}

	return doc, nil
}

func (s *S3Store) Put(ctx context.Context, doc schedule.Document) error {
	if err := adapt.S3PutJson(ctx, s.s3c, s.bucket, s.key, doc); err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", s.bucket, s.key, err)
	}

	return nil
}
