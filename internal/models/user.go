package models

import "time"

// User is an admin-panel identity. The password hash never leaves the server.
type User struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email             string     `json:"email" gorm:"uniqueIndex;size:320;not null"`
	PasswordHash      string     `json:"-" gorm:"size:255;not null"`
	FirstName         string     `json:"firstName" gorm:"size:120;not null"`
	LastName          string     `json:"lastName" gorm:"size:120;not null"`
	Phone             string     `json:"phone,omitempty" gorm:"size:32"`
	IsActive          *bool      `json:"isActive" gorm:"not null;default:true"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// ChangedPasswordAfter reports whether the password was rotated after a
// token issued at iat. Compared at second precision, like the token claim.
func (u *User) ChangedPasswordAfter(iat time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > iat.Unix()
}
