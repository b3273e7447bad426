package entity

import (
	"slices"
	"time"
)

// XPPerLevel is the amount of experience separating two levels.
const XPPerLevel = 1000

// User is the aggregate root for the user domain.
// Email is the identity other aggregates refer to; Following and Followers
// hold emails and must stay symmetric across users.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	AvatarURL string
	CoverURL  string
	Bio       string
	XP        int64
	Level     int64
	Following []string
	Followers []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LevelForXP derives the level reached with xp experience points.
func LevelForXP(xp int64) int64 {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// AwardXP adds amount to the user's experience. Level only ever moves up.
func (u *User) AwardXP(amount int64) {
	if amount <= 0 {
		return
	}
	u.XP += amount
	if lvl := LevelForXP(u.XP); lvl > u.Level {
		u.Level = lvl
	}
}

// IsFollowing reports whether u follows email.
func (u *User) IsFollowing(email string) bool {
	return slices.Contains(u.Following, email)
}

// Actor returns the denormalized snapshot of u used on notifications and comments.
func (u *User) Actor() Actor {
	return Actor{Email: u.Email, Name: u.Name, AvatarURL: u.AvatarURL}
}

// Actor identifies whoever performs an action, with display fields captured at
// call time.
type Actor struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
