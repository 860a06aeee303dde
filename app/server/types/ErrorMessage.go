package types

// ErrorMessage 所有错误响应的统一格式
type ErrorMessage struct {
	Message string `json:"message"`
}
