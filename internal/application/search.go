package application

import (
	"context"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
)

// UserSummary is the public view of a user.
type UserSummary struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	AvatarURL string   `json:"avatar_url"`
	XP        int64    `json:"xp"`
	Level     int64    `json:"level"`
	Following []string `json:"following"`
	Followers []string `json:"followers"`
}

// VehicleSummary is the searchable view of a vehicle.
type VehicleSummary struct {
	ID         string `json:"id"`
	OwnerEmail string `json:"owner_email"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Nickname   string `json:"nickname"`
	MediaURL   string `json:"media_url"`
}

// SearchResult groups matches by type.
type SearchResult struct {
	Users    []UserSummary    `json:"users"`
	Vehicles []VehicleSummary `json:"vehicles"`
}

// SearchIndex is the full-text index behind user and vehicle search.
type SearchIndex interface {
	IndexUser(ctx context.Context, u *entity.User) error
	IndexVehicle(ctx context.Context, c *entity.Content) error
	SearchUsers(ctx context.Context, q string, size int) ([]UserSummary, error)
	SearchVehicles(ctx context.Context, q string, size int) ([]VehicleSummary, error)
}

func summarizeUser(u *entity.User) UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		XP:        u.XP,
		Level:     u.Level,
		Following: nonNil(u.Following),
		Followers: nonNil(u.Followers),
	}
}

// SummarizeVehicle returns the searchable view of a vehicle entity.
func SummarizeVehicle(c *entity.Content) VehicleSummary {
	v := VehicleSummary{ID: c.ID, OwnerEmail: c.OwnerEmail, MediaURL: c.MediaURL}
	if c.Vehicle != nil {
		v.Brand, v.Model, v.Nickname = c.Vehicle.Brand, c.Vehicle.Model, c.Vehicle.Nickname
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
