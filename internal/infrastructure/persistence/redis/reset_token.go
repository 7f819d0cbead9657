package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// bookshop:reset:{sha256}  找回密码凭证 → 用户ID,一次性使用
const resetKeyPrefix = "bookshop:reset:"

// ResetTokenStore 找回密码凭证
type ResetTokenStore struct {
	client redis.Cmdable
}

// NewResetTokenStore 创建凭证存储
func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

// SaveResetToken 保存凭证,ttl后自动失效
func (s *ResetTokenStore) SaveResetToken(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetKey(token), userID, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "保存重置凭证失败")
	}
	return nil
}

// ConsumeResetToken 取出并删除凭证,GETDEL保证同一凭证只能使用一次
func (s *ResetTokenStore) ConsumeResetToken(ctx context.Context, token string) (uint, error) {
	val, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, apperrors.ErrResetTokenInvalid
		}
		return 0, apperrors.Wrap(err, "读取重置凭证失败")
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, apperrors.ErrResetTokenInvalid
	}
	return uint(id), nil
}

func resetKey(token string) string {
	return resetKeyPrefix + digest(token)
}
