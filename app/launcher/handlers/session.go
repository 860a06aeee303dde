package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

type errorMessage struct {
	Message string `json:"message"`
}

// request 发送请求并解析 JSON 响应，非 2xx 时返回服务端的错误信息
func (a *App) request(ctx context.Context, method string, path string, token string, body any, out any) error {
	reqUrl, err := url.JoinPath(a.cfg.ServerEndpoint, path)
	if err != nil {
		return fmt.Errorf("fail to join request url: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("fail to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqUrl, reqBody)
	if err != nil {
		return fmt.Errorf("fail to prepare request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("fail to send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var em errorMessage
		_ = json.NewDecoder(res.Body).Decode(&em)
		if em.Message == "" {
			em.Message = http.StatusText(res.StatusCode)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, res.StatusCode, em.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("fail to decode response: %w", err)
	}
	return nil
}

// ensureToken 没有 token 时使用用户名与密码登录
func (a *App) ensureToken(ctx context.Context) (string, error) {
	if a.token != "" {
		return a.token, nil
	}

	var res struct {
		Token string `json:"token"`
	}
	if err := a.request(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"username": a.cfg.Username,
		"password": a.cfg.Password,
	}, &res); err != nil {
		a.l.Error("failed to login", zap.String("username", a.cfg.Username), zap.Error(err))
		return "", err
	}

	a.token = res.Token
	return a.token, nil
}
