package storage

import (
	"context"
	"errors"
	"time"

	"foodgram/internal/logging"
	"foodgram/internal/metrics"

	"github.com/sony/gobreaker/v2"
)

// breakerStorage stops calling the backend after repeated failures and fails
// fast with gobreaker.ErrOpenState until the timeout elapses.
type breakerStorage struct {
	next ObjectStorage
	cb   *gobreaker.CircuitBreaker[string]
}

func WithCircuitBreaker(next ObjectStorage, name string) ObjectStorage {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// a rejected content type says nothing about backend health
			return err == nil || errors.Is(err, ErrContentTypeNotAllowed)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("storage circuit breaker state changed")
		},
	}

	return &breakerStorage{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (b *breakerStorage) UploadFile(ctx context.Context, fileName string, image *Image, folder string, allowed ...string) (string, error) {
	key, err := b.cb.Execute(func() (string, error) {
		return b.next.UploadFile(ctx, fileName, image, folder, allowed...)
	})
	metrics.RecordStorage("upload", err)
	return key, err
}

func (b *breakerStorage) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := b.cb.Execute(func() (string, error) {
		return "", b.next.DeleteFile(ctx, objectKey)
	})
	metrics.RecordStorage("delete", err)
	return err
}

func (b *breakerStorage) GetPublicLinkKey(objectKey string) string {
	return b.next.GetPublicLinkKey(objectKey)
}

func (b *breakerStorage) GetObjectKeyFromLink(link string) string {
	return b.next.GetObjectKeyFromLink(link)
}
