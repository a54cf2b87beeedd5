package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"social_backend/internal/feature/user/domain"
	"social_backend/internal/feature/user/domain/entity"
)

// dummyHash はユーザーの有無でログインの処理時間が変わらないようにするためのハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserFinder はログイン処理が参照するユーザーストアの一部です。
type UserFinder interface {
	FindByEmail(ctx context.Context, email entity.Email) (*entity.User, error)
}

// TokenGenerator は署名済みアクセストークンを発行します。
type TokenGenerator interface {
	GenerateToken(seq uint, email string) (string, error)
}

// authService はユーザーを認証しJWTを発行します。
type authService struct {
	users  UserFinder
	tokens TokenGenerator
}

// NewAuthService はauthServiceの新しいインスタンスを生成します。
func NewAuthService(users UserFinder, tokens TokenGenerator) *authService {
	return &authService{users: users, tokens: tokens}
}

// Login はメールアドレスとパスワードを検証し、署名済みトークンを返します。
// 未登録ユーザーとパスワード誤りはどちらも domain.ErrInvalidCredentials となり、
// いずれの場合もbcryptの比較を実行します。
func (a *authService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"

	var (
		user    *entity.User
		findErr error
	)
	parsed, err := entity.NewEmail(email)
	if err != nil {
		findErr = domain.ErrUserNotFound
	} else {
		user, findErr = a.users.FindByEmail(ctx, parsed)
	}
	if findErr != nil && !errors.Is(findErr, domain.ErrUserNotFound) {
		return "", domain.Wrap(domain.KindDataAccess, op, findErr)
	}

	passwordHash := dummyHash
	if findErr == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if findErr != nil || compareErr != nil {
		return "", domain.Wrap(domain.KindValidation, op, domain.ErrInvalidCredentials)
	}

	token, err := a.tokens.GenerateToken(user.Seq, user.Email.String())
	if err != nil {
		return "", domain.Wrap(domain.KindUnknown, op, fmt.Errorf("failed to generate token: %w", err))
	}
	return token, nil
}
