// Package adapters はuserフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"social_backend/internal/feature/user/domain"
	"social_backend/internal/feature/user/domain/entity"
	"social_backend/internal/feature/user/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反を表すSQLSTATEです。
const pgUniqueViolation = "23505"

// userGorm はUserRepositoryインターフェースのGORM実装です。
// 本番ではPostgreSQL、テストではSQLiteに対して動作します。
type userGorm struct {
	db *gorm.DB
}

// userGorm が UserRepository を実装していることをコンパイル時に保証
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm はuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーを挿入し、採番されたseqとタイムスタンプを書き戻します。
// メールアドレスが登録済みの場合は domain.ErrEmailAlreadyExists を返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	model := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return err
	}
	u.Seq = model.Seq
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindAll は全ユーザーをseq順に返します。
func (r *userGorm) FindAll(ctx context.Context) ([]entity.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	users := make([]entity.User, 0, len(models))
	for i := range models {
		u, err := models[i].ToEntity()
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

// FindBySeq はseqでユーザーを取得します。
func (r *userGorm) FindBySeq(ctx context.Context, seq uint) (*entity.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("seq = ?", seq).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToEntity()
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userGorm) FindByEmail(ctx context.Context, email entity.Email) (*entity.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToEntity()
}

// DeleteByEmail は指定したメールアドレスのユーザーを物理削除します。
func (r *userGorm) DeleteByEmail(ctx context.Context, email entity.Email) error {
	result := r.db.WithContext(ctx).
		Where("email = ?", email.String()).
		Delete(&UserModel{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// isUniqueViolation は重複キーエラーを判定します。
// GORMが変換したエラー、pgxのエラー、SQLiteのエラーメッセージのいずれにも対応します。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
