package user

import (
	"time"

	"github.com/vslbak/gymflow-web/internal/api"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

func (u *User) ToAPI() api.User {
	return api.User{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}
