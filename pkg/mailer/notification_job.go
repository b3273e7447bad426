package mailer

import "time"

// NotificationJob is the JSON payload put on the RabbitMQ queue after a
// notification was recorded. The worker turns it into an email.
type NotificationJob struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"` // like, comment, follow
	To         string    `json:"to"`
	ActorName  string    `json:"actor_name"`
	Text       string    `json:"text"`
	PreviewURL string    `json:"preview_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
