package entity

import "time"

// MediaType tells clients how to render MediaURL.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Comment is an append-only entry on a content entity.
type Comment struct {
	AuthorEmail  string    `json:"author_email"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// VehicleDetails holds the garage-specific attributes of a vehicle.
type VehicleDetails struct {
	Brand     string            `json:"brand"`
	Model     string            `json:"model"`
	Nickname  string            `json:"nickname,omitempty"`
	OwnerName string            `json:"owner_name,omitempty"`
	Specs     map[string]string `json:"specs,omitempty"`
	Mods      []string          `json:"mods,omitempty"`
}

// Content is any user-authored item that can accumulate likes and comments.
//
// OwnerEmail receives notifications and rewards; it may be empty when a
// vehicle's declared owner could not be resolved. Members and Admins are only
// meaningful for communities, CommunityID only for topics.
type Content struct {
	ID           string
	Kind         Kind
	OwnerEmail   string
	AuthorEmail  string
	AuthorName   string
	AuthorAvatar string
	Title        string
	Body         string
	MediaURL     string
	MediaType    MediaType
	CommunityID  string
	Vehicle      *VehicleDetails
	Members      []string
	Admins       []string
	LikeCount    int64
	Comments     []Comment
	CreatedAt    time.Time
}

// PreviewURL is the reference shown next to notifications about c.
func (c *Content) PreviewURL() string { return c.MediaURL }
