package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"social_backend/internal/feature/user/domain"
	"social_backend/internal/feature/user/domain/entity"
)

// mockUserRepository はUserRepositoryインターフェースのモック実装です。
type mockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *entity.User) error
	FindAllFunc       func(ctx context.Context) ([]entity.User, error)
	FindBySeqFunc     func(ctx context.Context, seq uint) (*entity.User, error)
	FindByEmailFunc   func(ctx context.Context, email entity.Email) (*entity.User, error)
	DeleteByEmailFunc func(ctx context.Context, email entity.Email) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) FindBySeq(ctx context.Context, seq uint) (*entity.User, error) {
	if m.FindBySeqFunc != nil {
		return m.FindBySeqFunc(ctx, seq)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email entity.Email) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) DeleteByEmail(ctx context.Context, email entity.Email) error {
	if m.DeleteByEmailFunc != nil {
		return m.DeleteByEmailFunc(ctx, email)
	}
	return nil
}

// memoryUserRepository is a map-backed UserRepository used for end-to-end usecase scenarios.
type memoryUserRepository struct {
	next  uint
	users map[uint]entity.User
}

// newMemoryUserRepository は空のインメモリリポジトリを生成します。
func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: map[uint]entity.User{}}
}

func (r *memoryUserRepository) Create(_ context.Context, user *entity.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.next++
	now := time.Now()
	user.Seq, user.CreatedAt, user.UpdatedAt = r.next, now, now
	r.users[user.Seq] = *user
	return nil
}

func (r *memoryUserRepository) FindAll(_ context.Context) ([]entity.User, error) {
	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *memoryUserRepository) FindBySeq(_ context.Context, seq uint) (*entity.User, error) {
	u, ok := r.users[seq]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email entity.Email) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepository) DeleteByEmail(_ context.Context, email entity.Email) error {
	for seq, u := range r.users {
		if u.Email == email {
			delete(r.users, seq)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// mustEmail はテスト用に検証済みのEmailを生成します。
func mustEmail(t *testing.T, raw string) entity.Email {
	t.Helper()
	email, err := entity.NewEmail(raw)
	require.NoError(t, err)
	return email
}

// TestNewUserService_DefaultCost はbcryptコストが範囲外の場合に既定値が使われることを検証します。
func TestNewUserService_DefaultCost(t *testing.T) {
	t.Parallel()

	svc := NewUserService(&mockUserRepository{}, 0)
	assert.Equal(t, bcrypt.DefaultCost, svc.cost)

	svc = NewUserService(&mockUserRepository{}, bcrypt.MinCost)
	assert.Equal(t, bcrypt.MinCost, svc.cost)
}

// TestUserService_FindAll は全ユーザー取得とエラー分類を検証します。
func TestUserService_FindAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		findAll   func(ctx context.Context) ([]entity.User, error)
		wantLen   int
		wantKind  domain.Kind
		wantError bool
	}{
		{
			name:    "success: empty store returns empty slice",
			findAll: func(ctx context.Context) ([]entity.User, error) { return nil, nil },
			wantLen: 0,
		},
		{
			name: "success: returns users",
			findAll: func(ctx context.Context) ([]entity.User, error) {
				return []entity.User{{Seq: 1}, {Seq: 2}}, nil
			},
			wantLen: 2,
		},
		{
			name:      "failure: storage error is a data access failure",
			findAll:   func(ctx context.Context) ([]entity.User, error) { return nil, errors.New("connection reset") },
			wantError: true,
			wantKind:  domain.KindDataAccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewUserService(&mockUserRepository{FindAllFunc: tt.findAll}, bcrypt.MinCost)
			users, err := svc.FindAll(context.Background())

			if tt.wantError {
				require.Error(t, err)
				assert.Nil(t, users)
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, users)
			assert.Len(t, users, tt.wantLen)
		})
	}
}

// TestUserService_FindOne はseq指定の取得と未存在時のNotFoundを検証します。
func TestUserService_FindOne(t *testing.T) {
	t.Parallel()

	storageErr := errors.New("timeout")

	tests := []struct {
		name     string
		seq      uint
		find     func(ctx context.Context, seq uint) (*entity.User, error)
		wantKind domain.Kind
		wantErr  error
	}{
		{
			name: "success: user found",
			seq:  7,
			find: func(ctx context.Context, seq uint) (*entity.User, error) {
				return &entity.User{Seq: seq}, nil
			},
		},
		{
			name:     "failure: unknown seq is not found",
			seq:      99,
			find:     func(ctx context.Context, seq uint) (*entity.User, error) { return nil, domain.ErrUserNotFound },
			wantKind: domain.KindNotFound,
			wantErr:  domain.ErrUserNotFound,
		},
		{
			name: "failure: seq 0 is not found without touching storage",
			seq:  0,
			find: func(ctx context.Context, seq uint) (*entity.User, error) {
				return nil, errors.New("must not be called")
			},
			wantKind: domain.KindNotFound,
			wantErr:  domain.ErrUserNotFound,
		},
		{
			name:     "failure: storage error",
			seq:      1,
			find:     func(ctx context.Context, seq uint) (*entity.User, error) { return nil, storageErr },
			wantKind: domain.KindDataAccess,
			wantErr:  storageErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewUserService(&mockUserRepository{FindBySeqFunc: tt.find}, bcrypt.MinCost)
			user, err := svc.FindOne(context.Background(), tt.seq)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, user)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.seq, user.Seq)
		})
	}
}

// TestUserService_Save は登録時のパスワード検証・ハッシュ化・重複検出を検証します。
func TestUserService_Save(t *testing.T) {
	t.Parallel()

	t.Run("success: password is hashed before persisting", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				assert.NotEqual(t, "password123", user.Password, "password must not be stored in plaintext")
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
				user.Seq = 1
				return nil
			},
		}
		svc := NewUserService(repo, bcrypt.MinCost)

		user, err := svc.Save(context.Background(), mustEmail(t, "test@example.com"), "password123")

		require.NoError(t, err)
		assert.Equal(t, uint(1), user.Seq)
		assert.Equal(t, "test@example.com", user.Email.String())
	})

	tests := []struct {
		name     string
		email    entity.Email
		password string
		create   func(ctx context.Context, user *entity.User) error
		wantErr  error
		wantKind domain.Kind
	}{
		{
			name:     "failure: zero email",
			email:    entity.Email{},
			password: "pw",
			wantErr:  domain.ErrInvalidEmail,
			wantKind: domain.KindValidation,
		},
		{
			name:     "failure: empty password",
			email:    mustEmail(t, "a@x.com"),
			password: "",
			wantErr:  domain.ErrInvalidPassword,
			wantKind: domain.KindValidation,
		},
		{
			name:     "failure: password longer than 72 bytes",
			email:    mustEmail(t, "a@x.com"),
			password: strings.Repeat("p", 73),
			wantErr:  domain.ErrInvalidPassword,
			wantKind: domain.KindValidation,
		},
		{
			name:     "failure: duplicate email",
			email:    mustEmail(t, "a@x.com"),
			password: "pw",
			create:   func(ctx context.Context, user *entity.User) error { return domain.ErrEmailAlreadyExists },
			wantErr:  domain.ErrEmailAlreadyExists,
			wantKind: domain.KindValidation,
		},
		{
			name:     "failure: storage error",
			email:    mustEmail(t, "a@x.com"),
			password: "pw",
			create:   func(ctx context.Context, user *entity.User) error { return context.DeadlineExceeded },
			wantErr:  context.DeadlineExceeded,
			wantKind: domain.KindDataAccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewUserService(&mockUserRepository{CreateFunc: tt.create}, bcrypt.MinCost)
			user, err := svc.Save(context.Background(), tt.email, tt.password)

			require.Error(t, err)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
		})
	}
}

// TestUserService_Delete はメールアドレス指定の削除とエラー分類を検証します。
func TestUserService_Delete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		del      func(ctx context.Context, email entity.Email) error
		wantErr  error
		wantKind domain.Kind
	}{
		{
			name:  "success: deletes by normalized email",
			email: " A@X.com",
			del: func(ctx context.Context, email entity.Email) error {
				if email.String() != "a@x.com" {
					return errors.New("unexpected email " + email.String())
				}
				return nil
			},
		},
		{
			name:     "failure: missing user is not found",
			email:    "ghost@x.com",
			del:      func(ctx context.Context, email entity.Email) error { return domain.ErrUserNotFound },
			wantErr:  domain.ErrUserNotFound,
			wantKind: domain.KindNotFound,
		},
		{
			name:     "failure: malformed email",
			email:    "not-an-email",
			wantErr:  domain.ErrInvalidEmail,
			wantKind: domain.KindValidation,
		},
		{
			name:     "failure: storage error",
			email:    "a@x.com",
			del:      func(ctx context.Context, email entity.Email) error { return errors.New("deadlock detected") },
			wantKind: domain.KindDataAccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewUserService(&mockUserRepository{DeleteByEmailFunc: tt.del}, bcrypt.MinCost)
			err := svc.Delete(context.Background(), tt.email)

			if tt.wantKind == domain.KindUnknown {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
		})
	}
}

// TestUserService_Lifecycle walks the save / find / delete round trip against a map-backed store.
func TestUserService_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewUserService(newMemoryUserRepository(), bcrypt.MinCost)

	users, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	saved, err := svc.Save(ctx, mustEmail(t, "a@x.com"), "pw")
	require.NoError(t, err)
	assert.Equal(t, uint(1), saved.Seq)
	assert.Equal(t, "a@x.com", saved.Email.String())

	found, err := svc.FindOne(ctx, saved.Seq)
	require.NoError(t, err)
	assert.Equal(t, saved.Email, found.Email)

	users, err = svc.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, uint(1), users[0].Seq)

	_, err = svc.Save(ctx, mustEmail(t, "A@X.COM"), "other")
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	require.NoError(t, svc.Delete(ctx, "a@x.com"))

	users, err = svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = svc.FindOne(ctx, saved.Seq)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	err = svc.Delete(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
