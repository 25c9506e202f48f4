package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 10

	// bcrypt 只使用前 72 字节
	maxPasswordBytes = 72
)

// Hasher bcrypt 封装；Cost 为 0 时用 DefaultBcryptCost
type Hasher struct {
	Cost int
}

// clip 超出 72 字节的部分截掉（与常见 bcrypt 实现一致），Hash 与 Check 必须同样处理
func clip(pw string) []byte {
	b := []byte(pw)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

func (h Hasher) Hash(pw string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword(clip(pw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (h Hasher) Check(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), clip(pw)) == nil
}
