package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/backend-template/database"
)

// User is an account that can obtain tokens.
type User struct {
	database.BaseModel
	Username    string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"size:254" json:"email"`
	FirstName   string     `gorm:"size:150" json:"firstName"`
	LastName    string     `gorm:"size:150" json:"lastName"`
	Password    string     `gorm:"size:128;not null" json:"-"`
	IsStaff     bool       `gorm:"not null;default:false" json:"isStaff"`
	IsSuperuser bool       `gorm:"not null;default:false" json:"isSuperuser"`
	LastLogin   *time.Time `json:"lastLogin"`
}

var _ database.Entity = (*User)(nil)

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// OutstandingToken records every issued refresh token so it can be
// blacklisted later.
type OutstandingToken struct {
	database.BaseModel
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	JTI       string     `gorm:"column:jti;size:255;uniqueIndex;not null" json:"jti"`
	Token     string     `gorm:"type:text;not null" json:"token"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expiresAt"`
}

var _ database.Entity = (*OutstandingToken)(nil)

// BlacklistedToken marks an outstanding refresh token as revoked.
type BlacklistedToken struct {
	database.BaseModel
	TokenID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"tokenId"`
	BlacklistedAt time.Time `gorm:"not null" json:"blacklistedAt"`
}

var _ database.Entity = (*BlacklistedToken)(nil)

// Models lists the tables owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{&User{}, &OutstandingToken{}, &BlacklistedToken{}}
}
