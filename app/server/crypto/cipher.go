package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// 派生密钥时使用的上下文信息，修改后旧数据将无法解密
const keyInfo = "remote-connection-manager/connection-secret/v1"

var ErrCiphertextTooShort = errors.New("encrypted data too short")

// Cipher 使用 AES-256-GCM 加密连接密码，每条记录使用独立的随机 nonce ，
// 存储格式为 nonce || 密文
type Cipher struct {
	aead cipher.AEAD
}

func New(secret string) (*Cipher, error) {
	if len(secret) == 0 {
		return nil, errors.New("secret is empty")
	}

	// 将任意长度的密钥材料派生为 32 字节的 AES 密钥
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("could not derive key: %w", err)
	}

	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("could not create new cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, fmt.Errorf("could not create GCM: %w", err)
	}

	return &Cipher{aead: gcm}, nil
}

func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())

	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("could not generate nonce: %w", err)
	}

	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *Cipher) Decrypt(encryptedData []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(encryptedData) < nonceSize+c.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := encryptedData[:nonceSize], encryptedData[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("could not decrypt ciphertext: %w", err)
	}

	return plaintext, nil
}

func (c *Cipher) EncryptString(plaintext string) ([]byte, error) {
	return c.Encrypt([]byte(plaintext))
}

func (c *Cipher) DecryptString(encryptedData []byte) (string, error) {
	plaintext, err := c.Decrypt(encryptedData)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
