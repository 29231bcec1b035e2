package models

import "time"

// Tag is a topic label attached to posts. Names are unique.
type Tag struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:tags_name_key;column:name"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Tag
func (Tag) TableName() string {
	return "tags"
}
