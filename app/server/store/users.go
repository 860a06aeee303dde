package store

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"remote-connection-manager/app/server/models"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"
	"gorm.io/gorm"
)

type NewUser struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UserPatch 中为 nil 的字段保持原值
type UserPatch struct {
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

const minPasswordLength = 6

// checkHash 测试中可替换
var checkHash = argon2id.CheckHash

var (
	decoyOnce sync.Once
	decoyHash string
)

// verifyDecoy 用户不存在时同样做一次哈希比较，避免响应时间暴露用户名是否存在
func verifyDecoy(candidate string) {
	decoyOnce.Do(func() {
		decoyHash, _ = argon2id.CreateHash("decoy-password", argon2id.DefaultParams)
	})
	_, _, _ = checkHash(candidate, decoyHash)
}

func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// VerifyPassword 使用 argon2id 校验密码，比较过程为常量时间
func VerifyPassword(user *models.User, candidate string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	match, _, err := checkHash(candidate, user.PasswordHash)
	return err == nil && match
}

func validateUsername(username string) error {
	if l := len(username); l < 3 || l > 64 {
		return validationf("username must be between 3 and 64 characters")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return validationf("username must not contain whitespace")
	}
	return nil
}

func validateEmail(email string) error {
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return validationf("email is not valid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return validationf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func validateRole(role string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return validationf("role must be %q or %q", models.RoleUser, models.RoleAdmin)
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	user := models.User{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Role:     in.Role,
		IsActive: true,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	if err := validateUsername(user.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(user.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validateRole(user.Role); err != nil {
		return nil, err
	}

	db, cancel := s.session(ctx)
	defer cancel()

	// 先检查一次，唯一索引兜底并发的情况
	var count int64
	if err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	} else if count > 0 {
		return nil, ErrConflict
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "get user %d", id)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var user models.User
	if err := db.First(&user, "username = ?", strings.TrimSpace(username)).Error; err != nil {
		return nil, notFoundOr(err, "get user %q", username)
	}
	return &user, nil
}

// Authenticate 校验用户名与密码，成功时更新最后登录时间
func (s *Store) Authenticate(ctx context.Context, username string, password string) (*models.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			verifyDecoy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.TouchLastLogin(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, user *models.User) error {
	db, cancel := s.session(ctx)
	defer cancel()

	now := s.now()
	if err := db.Model(user).UpdateColumn("last_login", now).Error; err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now
	return nil
}

func (s *Store) ChangePassword(ctx context.Context, userID uint, current string, next string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !VerifyPassword(user, current) {
		return ErrInvalidCredentials
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	db, cancel := s.session(ctx)
	defer cancel()

	if err := db.Model(user).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ListUsers 分页列出用户， limit <= 0 时返回全部
func (s *Store) ListUsers(ctx context.Context, page int, limit int) ([]models.User, int64, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var (
		users []models.User
		count int64
	)

	query := db.Model(&models.User{}).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(page * limit)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, count, nil
}

// UpdateUser 以合并方式更新用户， actorID 为发起操作的管理员
func (s *Store) UpdateUser(ctx context.Context, actorID uint, id uint, patch UserPatch) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsActive != nil && !*patch.IsActive && actorID == id {
		return nil, ErrSelfAction
	}

	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if patch.Role != nil {
		if err := validateRole(*patch.Role); err != nil {
			return nil, err
		}
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	db, cancel := s.session(ctx)
	defer cancel()

	if patch.Email != nil {
		var count int64
		if err := db.Model(&models.User{}).
			Where("email = ? AND id <> ?", user.Email, user.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count users: %w", err)
		} else if count > 0 {
			return nil, ErrConflict
		}
	}

	if err := db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	return user, nil
}

// ToggleActive 切换启用状态，管理员不能停用自己
func (s *Store) ToggleActive(ctx context.Context, actorID uint, id uint) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID == id {
		return nil, ErrSelfAction
	}

	db, cancel := s.session(ctx)
	defer cancel()

	user.IsActive = !user.IsActive
	if err := db.Model(user).Update("is_active", user.IsActive).Error; err != nil {
		return nil, fmt.Errorf("toggle user %d: %w", id, err)
	}
	return user, nil
}

// DeleteUser 删除用户及其所有连接，审计记录保留
func (s *Store) DeleteUser(ctx context.Context, actorID uint, id uint) error {
	if actorID == id {
		return ErrSelfAction
	}

	db, cancel := s.session(ctx)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Connection{}).Error; err != nil {
			return fmt.Errorf("delete connections of user %d: %w", id, err)
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
