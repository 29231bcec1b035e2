package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post is a recipe or article authored by a user
type Post struct {
	ID               string         `gorm:"type:uuid;primaryKey;column:id"`
	AuthorID         *string        `gorm:"type:uuid;index;column:author_id"`
	CreatedAt        time.Time      `gorm:"not null;index;column:created_at"`
	UpdatedAt        *time.Time     `gorm:"autoUpdateTime:false;column:updated_at"`
	Title            string         `gorm:"type:varchar(1000);column:title"`
	ShortDescription string         `gorm:"type:text;column:short_description"`
	Content          string         `gorm:"type:text;not null;column:content"`
	Thumbnail        datatypes.JSON `gorm:"column:thumbnail"`
	Video            string         `gorm:"type:varchar(2000);column:video"`

	// LikesCount is only populated by feed queries, which compute it from
	// post_likes for every request.
	LikesCount int64 `gorm:"->;-:migration;column:likes_count"`

	// Relationships
	Author *User  `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Likes  []User `gorm:"many2many:post_likes"`
	Tags   []Tag  `gorm:"many2many:post_tags"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns a random UUID when none is set
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// LikerIDs returns the ids of the users who liked the post
func (p *Post) LikerIDs() []string {
	ids := make([]string, len(p.Likes))
	for i, u := range p.Likes {
		ids[i] = u.ID
	}
	return ids
}

// TagNames returns the names of the tags attached to the post
func (p *Post) TagNames() []string {
	names := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		names[i] = t.Name
	}
	return names
}
