package adapters

import (
	"fmt"
	"time"

	"social_backend/internal/feature/user/domain/entity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	Seq       uint   `gorm:"column:seq;primaryKey;autoIncrement"`
	Email     string `gorm:"uniqueIndex;size:255;not null"`
	Password  string `gorm:"column:passwd;size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
// Stored addresses are re-validated so a corrupt row surfaces as an error.
func (m *UserModel) ToEntity() (*entity.User, error) {
	email, err := entity.NewEmail(m.Email)
	if err != nil {
		return nil, fmt.Errorf("corrupt email for user %d: %w", m.Seq, err)
	}
	return &entity.User{
		Seq:       m.Seq,
		Email:     email,
		Password:  m.Password,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		Seq:       u.Seq,
		Email:     u.Email.String(),
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
