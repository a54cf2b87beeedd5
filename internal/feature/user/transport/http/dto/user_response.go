package dto

import (
	"time"

	"social_backend/internal/feature/user/domain/entity"
)

// UserRes はユーザーの公開用表現です。パスワードハッシュは含めません。
type UserRes struct {
	Seq       uint      `json:"seq"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenRes は署名済みアクセストークンを返すレスポンスです。
type TokenRes struct {
	Token string `json:"token"`
}

// ErrorRes はエラーレスポンスのボディです。
// RequestID は500系の応答でのみ設定されます。
type ErrorRes struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewUserRes はドメインのユーザーをレスポンス形式に変換します。
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		Seq:       u.Seq,
		Email:     u.Email.String(),
		CreatedAt: u.CreatedAt,
	}
}
