// Package usecase はuserフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"social_backend/internal/feature/user/domain"
	"social_backend/internal/feature/user/domain/entity"
)

// maxPasswordBytes はbcryptが受け付ける入力の最大長です。
const maxPasswordBytes = 72

// UserRepository はユーザーエンティティの永続化を抽象化したインターフェースです。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを保存し、Seqとタイムスタンプを設定します。
	// メールアドレスが登録済みの場合は domain.ErrEmailAlreadyExists を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindAll は全ユーザーをSeq順に返します。
	FindAll(ctx context.Context) ([]entity.User, error)

	// FindBySeq は該当ユーザーがいない場合 domain.ErrUserNotFound を返します。
	FindBySeq(ctx context.Context, seq uint) (*entity.User, error)

	// FindByEmail は該当ユーザーがいない場合 domain.ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email entity.Email) (*entity.User, error)

	// DeleteByEmail は削除対象がない場合 domain.ErrUserNotFound を返します。
	DeleteByEmail(ctx context.Context, email entity.Email) error
}

// userService はユーザーの一覧・取得・登録・削除を実装します。
type userService struct {
	users UserRepository
	cost  int
}

// NewUserService はuserServiceを生成します。costが0以下の場合は bcrypt.DefaultCost を使用します。
func NewUserService(users UserRepository, cost int) *userService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &userService{users: users, cost: cost}
}

// FindAll は全ユーザーを返します。0件の場合はnilではなく空のスライスを返します。
func (s *userService) FindAll(ctx context.Context) ([]entity.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, classify("user.FindAll", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// FindOne はseqで指定されたユーザーを返します。
func (s *userService) FindOne(ctx context.Context, seq uint) (*entity.User, error) {
	if seq == 0 {
		return nil, domain.Wrap(domain.KindNotFound, "user.FindOne", domain.ErrUserNotFound)
	}
	user, err := s.users.FindBySeq(ctx, seq)
	if err != nil {
		return nil, classify("user.FindOne", err)
	}
	return user, nil
}

// Save はbcryptでハッシュ化したパスワードで新規ユーザーを作成します。既存ユーザーは上書きしません。
func (s *userService) Save(ctx context.Context, email entity.Email, password string) (*entity.User, error) {
	const op = "user.Save"

	if email.IsZero() {
		return nil, domain.Wrap(domain.KindValidation, op, domain.ErrInvalidEmail)
	}
	if err := validatePassword(password); err != nil {
		return nil, domain.Wrap(domain.KindValidation, op, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, domain.Wrap(domain.KindUnknown, op, fmt.Errorf("failed to hash password: %w", err))
	}

	user := &entity.User{Email: email, Password: string(hashed)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, classify(op, err)
	}
	return user, nil
}

// Delete はemailで登録されたユーザーを削除します。
// 存在しない場合は domain.ErrUserNotFound を返します。
func (s *userService) Delete(ctx context.Context, email string) error {
	const op = "user.Delete"

	parsed, err := entity.NewEmail(email)
	if err != nil {
		return domain.Wrap(domain.KindValidation, op, err)
	}
	if err := s.users.DeleteByEmail(ctx, parsed); err != nil {
		return classify(op, err)
	}
	return nil
}

// validatePassword はパスワードが空でなく、bcryptの入力上限に収まることを確認します。
func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: must not be empty", domain.ErrInvalidPassword)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: must be at most %d bytes", domain.ErrInvalidPassword, maxPasswordBytes)
	}
	return nil
}

// classify はリポジトリのエラーにKindを付与します。
// 既知のドメインエラー以外はストレージ由来として扱います。
func classify(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return domain.Wrap(domain.KindNotFound, op, err)
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return domain.Wrap(domain.KindValidation, op, err)
	default:
		return domain.Wrap(domain.KindDataAccess, op, err)
	}
}
