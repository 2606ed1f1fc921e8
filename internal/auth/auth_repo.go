package auth

import (
	"errors"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/user"
)

type AuthRepository interface {
	CreateUser(u *user.User) error
	GetUserByEmail(email string) (*user.User, error)
	GetUserByUsername(username string) (*user.User, error)
	AssignRoleToUser(userID uint, role string) error
}

type authRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *authRepository) GetUserByEmail(email string) (*user.User, error) {
	var u user.User
	if err := r.db.Preload("Roles").Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *authRepository) GetUserByUsername(username string) (*user.User, error) {
	var u user.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// AssignRoleToUser links an existing role to the user, creating the role row
// if it has never been seen before.
func (r *authRepository) AssignRoleToUser(userID uint, roleName string) error {
	var role user.Role
	err := r.db.Where("name = ?", roleName).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = user.Role{Name: roleName}
		if err := r.db.Create(&role).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var u user.User
	if err := r.db.First(&u, userID).Error; err != nil {
		return err
	}
	return r.db.Model(&u).Association("Roles").Append(&role)
}
