package utils

import (
	"fmt"
	"strconv"
)

func P[T any](v T) *T {
	return &v
}

// ParseID 解析路径中的数字 ID
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id: %q", raw)
	}
	return uint(id), nil
}
