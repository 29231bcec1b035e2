package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that authors, likes and follows content
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey;column:id"`
	Email     string    `gorm:"type:varchar(254);not null;uniqueIndex:users_email_key;column:email"`
	Username  *string   `gorm:"type:varchar(40);uniqueIndex:users_username_key;column:username"`
	FirstName *string   `gorm:"type:varchar(30);column:first_name"`
	LastName  *string   `gorm:"type:varchar(30);column:last_name"`
	Phone     *string   `gorm:"type:varchar(30);column:phone"`
	Avatar    *string   `gorm:"type:varchar(2000);column:avatar"`
	IsActive  bool      `gorm:"not null;default:false;column:is_active"`
	JoinedAt  time.Time `gorm:"not null;autoCreateTime;column:joined_at"`

	// Following is directed: a user following another implies nothing in reverse.
	Following    []*User `gorm:"many2many:user_following;joinForeignKey:FollowerID;joinReferences:FollowingID"`
	FollowedTags []Tag   `gorm:"many2many:user_followed_tags"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a random UUID when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName returns the username, or an empty string when unset
func (u *User) DisplayName() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}
