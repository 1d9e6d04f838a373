package models

import "time"

// User is an entry of the user directory. Credentials live with the
// external identity provider and are not stored here.
type User struct {
	Username  string    `gorm:"primaryKey;type:text" json:"username" yaml:"username"`
	Name      string    `gorm:"type:text" json:"name" yaml:"name"`
	Role      Role      `gorm:"type:text;index;not null" json:"role" yaml:"role"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

type Users []*User
