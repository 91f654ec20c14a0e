package cache

import (
	"context"
	"fmt"
	"time"
)

// Key patterns for cached entities. Only anonymous reads are cached; viewer
// specific flags would otherwise leak between users.
const (
	UserKeyPrefix    = "user:%d"
	ScratchKeyPrefix = "scratch:%d"
)

const (
	UserTTL    = 5 * time.Minute
	ScratchTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ScratchKey(scratchID uint) string {
	return fmt.Sprintf(ScratchKeyPrefix, scratchID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateScratch(ctx context.Context, scratchID uint) {
	Invalidate(ctx, ScratchKey(scratchID))
}
