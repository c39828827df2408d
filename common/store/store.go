package store

import (
	"context"
	"errors"
	"github.com/PedroLeon917/cybdates/common/schedule"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrNotFound = errors.New("no flights stored")

// Store persists the most recently ingested document. Put replaces the stored document as a whole.
type Store interface {
	Get(ctx context.Context) (schedule.Document, error)
	Put(ctx context.Context, doc schedule.Document) error
}
