package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"remote-connection-manager/app/server/constants"
	"remote-connection-manager/app/server/models"
	"remote-connection-manager/app/server/store"
	"remote-connection-manager/app/server/types"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func accountCacheKey(id uint) string {
	return fmt.Sprintf(constants.CacheKeyAccountState, id)
}

// loadAccount 读取账户的当前状态，优先使用缓存
func (a *App) loadAccount(ctx context.Context, id uint) (*types.CacheAccount, error) {
	var account types.CacheAccount

	cacheKey := accountCacheKey(id)
	if a.rdb != nil {
		if cacheBytes, err := a.rdb.Get(ctx, cacheKey).Bytes(); err != nil {
			if !errors.Is(err, redis.Nil) {
				a.l.Error("failed to query cache for account state", zap.Uint("id", id), zap.Error(err))
			}
		} else if err = json.Unmarshal(cacheBytes, &account); err != nil {
			a.l.Error("failed to unmarshal account state", zap.Uint("id", id), zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
			// 可能是无效的缓存，清理掉
			a.rdb.Del(ctx, cacheKey)
		} else if account.Removed {
			return nil, store.ErrNotFound
		} else {
			return &account, nil
		}
	}

	// 查询数据库
	user, err := a.st.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	account = accountState(user)

	// 只在没有缓存时写入，不覆盖期间由账户变更写入的新状态
	a.cacheAccount(ctx, &account, false)

	return &account, nil
}

// publishAccount 账户变更后写入新状态，覆盖旧缓存
func (a *App) publishAccount(ctx context.Context, user *models.User) {
	account := accountState(user)
	a.cacheAccount(ctx, &account, true)
}

// revokeAccount 账户删除后写入删除标记，直到缓存过期
func (a *App) revokeAccount(ctx context.Context, id uint) {
	a.cacheAccount(ctx, &types.CacheAccount{ID: id, Removed: true}, true)
}

func (a *App) cacheAccount(ctx context.Context, account *types.CacheAccount, overwrite bool) {
	if a.rdb == nil {
		return
	}

	cacheBytes, err := json.Marshal(account)
	if err != nil {
		a.l.Error("failed to marshal account state", zap.Uint("id", account.ID), zap.Error(err))
		return
	}

	cacheKey := accountCacheKey(account.ID)
	if overwrite {
		err = a.rdb.Set(ctx, cacheKey, cacheBytes, constants.CacheExpireAccountState).Err()
	} else {
		err = a.rdb.SetNX(ctx, cacheKey, cacheBytes, constants.CacheExpireAccountState).Err()
	}
	if err != nil {
		a.l.Error("failed to cache account state", zap.Uint("id", account.ID), zap.Bool("overwrite", overwrite), zap.Error(err))
	}
}

func accountState(user *models.User) types.CacheAccount {
	return types.CacheAccount{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		IsActive: user.IsActive,
	}
}
