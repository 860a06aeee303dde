package types

// CacheAccount 缓存在 Redis 中的账户状态，每个请求都会据此重新校验主体
type CacheAccount struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	Removed  bool   `json:"removed,omitempty"` // 账户已删除
}
