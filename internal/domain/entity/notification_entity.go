package entity

import "time"

// NotificationKind enumerates what triggered a notification.
type NotificationKind string

const (
	NotificationLike    NotificationKind = "like"
	NotificationFollow  NotificationKind = "follow"
	NotificationComment NotificationKind = "comment"
)

// Notification is an immutable fan-out record; only Read changes, in bulk.
type Notification struct {
	ID          string
	Kind        NotificationKind
	ActorEmail  string
	ActorName   string
	ActorAvatar string
	Recipient   string
	Text        string
	PreviewURL  string
	Read        bool
	CreatedAt   time.Time
}
