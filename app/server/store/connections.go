package store

import (
	"context"
	"fmt"
	"net/url"
	"remote-connection-manager/app/server/models"
	"strings"
)

// ConnectionFields 用于创建与合并更新，为 nil 的字段保持原值
type ConnectionFields struct {
	Name        *string   `json:"name"`
	Type        *string   `json:"type"`
	Host        *string   `json:"host"`
	Port        *int      `json:"port"`
	Username    *string   `json:"username"`
	Password    *string   `json:"password"`
	URL         *string   `json:"url"`
	Description *string   `json:"description"`
	GroupName   *string   `json:"group_name"`
	IsFavorite  *bool     `json:"is_favorite"`
	Tags        *[]string `json:"tags"`
	PreScript   *string   `json:"pre_script"`
	PostScript  *string   `json:"post_script"`
}

type ConnectionFilter struct {
	Type     string
	Group    string
	Favorite *bool
	Search   string
}

var defaultPorts = map[string]int{
	models.ConnectionTypeRDP:    3389,
	models.ConnectionTypeSSH:    22,
	models.ConnectionTypeVNC:    5900,
	models.ConnectionTypeTelnet: 23,
	models.ConnectionTypeWeb:    443,
}

// DefaultPort 返回连接类型的默认端口， web 类型根据 URL 协议决定
func DefaultPort(connType string, rawURL string) int {
	if connType == models.ConnectionTypeWeb && rawURL != "" {
		if u, err := url.Parse(rawURL); err == nil && u.Scheme == "http" {
			return 80
		}
	}
	return defaultPorts[connType]
}

func (s *Store) connectionMapFields(f *ConnectionFields, conn *models.Connection) error {
	if f.Name != nil {
		conn.Name = strings.TrimSpace(*f.Name)
	}
	if f.Type != nil {
		conn.Type = strings.ToLower(strings.TrimSpace(*f.Type))
	}
	if f.Host != nil {
		conn.Host = strings.TrimSpace(*f.Host)
	}
	if f.Port != nil {
		conn.Port = *f.Port
	}
	if f.Username != nil {
		conn.Username = *f.Username
	}
	if f.URL != nil {
		conn.URL = strings.TrimSpace(*f.URL)
	}
	if f.Description != nil {
		conn.Description = *f.Description
	}
	if f.GroupName != nil {
		conn.GroupName = strings.TrimSpace(*f.GroupName)
	}
	if f.IsFavorite != nil {
		conn.IsFavorite = *f.IsFavorite
	}
	if f.Tags != nil {
		conn.Tags = normalizeTags(*f.Tags)
	}
	if f.PreScript != nil {
		conn.PreScript = *f.PreScript
	}
	if f.PostScript != nil {
		conn.PostScript = *f.PostScript
	}

	// 只有提交了密码才重新加密，否则保留原密文；提交空字符串表示清除
	if f.Password != nil {
		if *f.Password == "" {
			conn.PasswordEncrypted = nil
		} else {
			encrypted, err := s.cipher.EncryptString(*f.Password)
			if err != nil {
				return fmt.Errorf("encrypt password: %w", err)
			}
			conn.PasswordEncrypted = encrypted
		}
	}

	return nil
}

// normalizeTags 去除空白与空标签，保持原有顺序
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func validateConnection(conn *models.Connection) error {
	if conn.Name == "" {
		return validationf("name is required")
	}
	if conn.Type == "" {
		return validationf("type is required")
	}
	if !models.IsConnectionType(conn.Type) {
		return validationf("type must be one of %s", strings.Join(models.ConnectionTypes, ", "))
	}
	if conn.Port < 0 || conn.Port > 65535 {
		return validationf("port must be between 0 and 65535")
	}
	if conn.Type == models.ConnectionTypeWeb {
		if conn.URL == "" && conn.Host == "" {
			return validationf("url or host is required for web connections")
		}
		if conn.URL != "" {
			if u, err := url.Parse(conn.URL); err != nil || u.Scheme == "" || u.Host == "" {
				return validationf("url is not valid")
			}
		}
	} else if conn.Host == "" {
		return validationf("host is required")
	}
	return nil
}

func (s *Store) CreateConnection(ctx context.Context, ownerID uint, f ConnectionFields) (*models.Connection, error) {
	conn := models.Connection{
		UserID: ownerID,
		Tags:   []string{},
	}
	if err := s.connectionMapFields(&f, &conn); err != nil {
		return nil, err
	}
	if err := validateConnection(&conn); err != nil {
		return nil, err
	}
	if conn.Port == 0 {
		conn.Port = DefaultPort(conn.Type, conn.URL)
	}

	db, cancel := s.session(ctx)
	defer cancel()

	if err := db.Create(&conn).Error; err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	return &conn, nil
}

func (s *Store) ListConnections(ctx context.Context, ownerID uint, filter ConnectionFilter) ([]models.Connection, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	query := db.Model(&models.Connection{}).Where("user_id = ?", ownerID)
	if filter.Type != "" {
		query = query.Where("type = ?", strings.ToLower(filter.Type))
	}
	if filter.Group != "" {
		query = query.Where("group_name = ?", filter.Group)
	}
	if filter.Favorite != nil {
		query = query.Where("is_favorite = ?", *filter.Favorite)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(host) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}

	connections := []models.Connection{}
	if err := query.Order("is_favorite DESC").Order("name ASC").Order("id ASC").Find(&connections).Error; err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return connections, nil
}

// GetConnection 只返回属于 ownerID 的连接，不属于时同样报告 ErrNotFound ，避免泄露存在性
func (s *Store) GetConnection(ctx context.Context, id uint, ownerID uint) (*models.Connection, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var conn models.Connection
	if err := db.First(&conn, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
		return nil, notFoundOr(err, "get connection %d", id)
	}
	return &conn, nil
}

func (s *Store) UpdateConnection(ctx context.Context, id uint, ownerID uint, f ConnectionFields) (*models.Connection, error) {
	conn, err := s.GetConnection(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.connectionMapFields(&f, conn); err != nil {
		return nil, err
	}
	if err := validateConnection(conn); err != nil {
		return nil, err
	}

	db, cancel := s.session(ctx)
	defer cancel()

	if err := db.Save(conn).Error; err != nil {
		return nil, fmt.Errorf("update connection %d: %w", id, err)
	}
	return conn, nil
}

func (s *Store) DeleteConnection(ctx context.Context, id uint, ownerID uint) error {
	db, cancel := s.session(ctx)
	defer cancel()

	res := db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Connection{})
	if res.Error != nil {
		return fmt.Errorf("delete connection %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ToggleFavorite(ctx context.Context, id uint, ownerID uint) (*models.Connection, error) {
	conn, err := s.GetConnection(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	db, cancel := s.session(ctx)
	defer cancel()

	conn.IsFavorite = !conn.IsFavorite
	if err := db.Model(conn).Update("is_favorite", conn.IsFavorite).Error; err != nil {
		return nil, fmt.Errorf("toggle favorite %d: %w", id, err)
	}
	return conn, nil
}

// Groups 返回用户已使用的分组名
func (s *Store) Groups(ctx context.Context, ownerID uint) ([]string, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	groups := []string{}
	if err := db.Model(&models.Connection{}).
		Where("user_id = ? AND group_name <> ''", ownerID).
		Distinct("group_name").
		Order("group_name ASC").
		Pluck("group_name", &groups).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// DecryptSecret 仅在展示或启动时调用，解密结果不会写回数据库
func (s *Store) DecryptSecret(ciphertext []byte) (string, error) {
	if len(ciphertext) == 0 {
		return "", nil
	}
	plaintext, err := s.cipher.DecryptString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSecretCorrupt, err)
	}
	return plaintext, nil
}
