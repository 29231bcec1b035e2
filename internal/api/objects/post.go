// Package objects renders models into their public JSON shapes.
package objects

import (
	"encoding/json"
	"time"

	"github.com/culinara/culinara/internal/feed"
	"github.com/culinara/culinara/internal/models"
)

// User is the public view of a post author
type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
}

// Post is the public view of a ranked post
type Post struct {
	ID               string          `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at"`
	Title            string          `json:"title"`
	ShortDescription string          `json:"short_description"`
	Content          string          `json:"content"`
	Thumbnail        json.RawMessage `json:"thumbnail"`
	Video            string          `json:"video"`
	Author           *User           `json:"author"`
	Likes            []string        `json:"likes"`
	LikesCount       int64           `json:"likes_count"`
	Tags             []string        `json:"tags"`
	// Rank is the 1-based position in the feed; zero outside ranked lists.
	Rank             int             `json:"rank,omitempty"`
}

// NewUser renders a user, or nil for a missing author
func NewUser(u *models.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Avatar:    u.Avatar,
	}
}

// NewPost renders one post
func NewPost(p *models.Post) Post {
	thumbnail := json.RawMessage("null")
	if len(p.Thumbnail) > 0 {
		thumbnail = json.RawMessage(p.Thumbnail)
	}
	return Post{
		ID:               p.ID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Title:            p.Title,
		ShortDescription: p.ShortDescription,
		Content:          p.Content,
		Thumbnail:        thumbnail,
		Video:            p.Video,
		Author:           NewUser(p.Author),
		Likes:            p.LikerIDs(),
		LikesCount:       p.LikesCount,
		Tags:             p.TagNames(),
	}
}

// NewPosts renders ranked posts in rank order
func NewPosts(posts []feed.ScoredPost) []Post {
	out := make([]Post, len(posts))
	for i, p := range posts {
		out[i] = NewPost(p.Post)
		out[i].Rank = p.Rank
	}
	return out
}
