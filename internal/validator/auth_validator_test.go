package validator_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/usecase"
	"app/internal/validator"

	"github.com/stretchr/testify/assert"
)

func TestAuthValidator_ValidateRegister(t *testing.T) {
	v := validator.NewAuthValidator()
	ctx := context.Background()

	cases := []struct {
		name       string
		email      string
		password   string
		wantStatus int // 0ならエラーなし
	}{
		{"ok", "alice@example.com", "password123", 0},
		{"missing email", "", "password123", http.StatusBadRequest},
		{"missing password", "alice@example.com", "", http.StatusBadRequest},
		{"no at sign", "alice.example.com", "password123", http.StatusBadRequest},
		{"no domain dot", "alice@example", "password123", http.StatusBadRequest},
		{"space in email", "ali ce@example.com", "password123", http.StatusBadRequest},
		{"short password", "alice@example.com", "seven77", http.StatusBadRequest},
		{"exactly 8 chars", "alice@example.com", "eight888", 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := v.ValidateRegister(ctx, c.email, c.password)
			if c.wantStatus == 0 {
				assert.NoError(t, err)
				return
			}
			he, ok := usecase.AsHTTPError(err)
			if assert.True(t, ok) {
				assert.Equal(t, c.wantStatus, he.Status)
			}
		})
	}
}

func TestAuthValidator_ValidateLogin(t *testing.T) {
	v := validator.NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "alice@example.com", "x"))

	err := v.ValidateLogin(ctx, "", "x")
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusBadRequest, he.Status)
	}

	//ログインは長さチェックをしない（登録時の規則が変わっても弾かない）
	assert.NoError(t, v.ValidateLogin(ctx, "alice@example.com", "short"))
}
