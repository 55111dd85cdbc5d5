package domain

import "time"

// User is one account of the directory. Accounts carry exactly one role;
// the role itself may be shared by many users.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:1024;not null" json:"-"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	RoleID       uint      `gorm:"not null;index" json:"role_id"`
	Role         Role      `json:"role,omitempty"`
	Enabled      bool      `gorm:"not null;default:true" json:"enabled"`
	Locked       bool      `gorm:"not null;default:false" json:"locked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Active reports whether the account may authenticate at all.
func (u *User) Active() bool {
	return u.Enabled && !u.Locked
}
