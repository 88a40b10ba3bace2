package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// UserID returns the user owning the session token. Unknown and expired
// tokens are reported as not logged, without an error.
func (c *LoginChecker) UserID(ctx context.Context, token string) (string, bool, error) {
	cmd := c.redisClient.HGetAll(ctx, sessionKeyPrefix+token)
	if err := cmd.Err(); err != nil {
		return "", false, err
	}

	session := cmd.Val()
	userID := session[fieldUserID]
	if userID == "" {
		return "", false, nil
	}

	createdAtUnix, err := strconv.ParseInt(session[fieldCreatedAt], 10, 64)
	if err != nil {
		return "", false, err
	}

	if time.Since(time.Unix(createdAtUnix, 0)) > c.ttl {
		return "", false, nil
	}

	return userID, true, nil
}
