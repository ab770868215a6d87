package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ReaderKeyPrefix = "reader:%d"
	BookKeyPrefix   = "book:%d"
)

const (
	// ReaderTTL bounds how long a stale identity (role, approval, active
	// flags) can be served after a moderation write on another instance.
	ReaderTTL = 5 * time.Minute
	BookTTL   = 10 * time.Minute
)

func ReaderKey(readerID uint) string {
	return fmt.Sprintf(ReaderKeyPrefix, readerID)
}

func BookKey(bookID uint) string {
	return fmt.Sprintf(BookKeyPrefix, bookID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateReader(ctx context.Context, readerID uint) {
	Invalidate(ctx, ReaderKey(readerID))
}

func InvalidateBook(ctx context.Context, bookID uint) {
	Invalidate(ctx, BookKey(bookID))
}
