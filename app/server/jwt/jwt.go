package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 会话有效期
const TokenDuration = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

type JWT struct {
	key []byte
	now func() time.Time
}

type User struct {
	ID       uint
	Username string
	Role     string
	Expires  int64 // Unix second
}

type claims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func New(key string) (*JWT, error) {
	if len(key) == 0 {
		return nil, errors.New("key is empty")
	}

	return &JWT{key: []byte(key), now: time.Now}, nil
}

// WithClock 替换时间来源，用于测试
func (j *JWT) WithClock(now func() time.Time) *JWT {
	return &JWT{key: j.key, now: now}
}

func (j *JWT) ParseUser(tokenString string) (*User, error) {
	// 检查是否有效
	if len(tokenString) == 0 {
		return nil, errors.New("token string is empty")
	}

	// 映射字段
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || c.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return &User{
		ID:       c.UserID,
		Username: c.Username,
		Role:     c.Role,
		Expires:  c.ExpiresAt.Unix(),
	}, nil
}

// SignToken 签发 token ，有效期从当前时间起算 TokenDuration ，忽略传入的 Expires
func (j *JWT) SignToken(user *User) (string, time.Time, error) {
	issuedAt := j.now()
	expires := issuedAt.Add(TokenDuration)

	// 创建声明
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	// 创建令牌
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)

	// 签名并返回
	signed, err := token.SignedString(j.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}
