package store

import "errors"

// 存储层错误，由调用方使用 errors.Is 匹配，不会透出数据库原始错误
var (
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrSelfAction         = errors.New("cannot deactivate or delete your own account")
	ErrSecretCorrupt      = errors.New("stored secret cannot be decrypted")
)
