package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
	"github.com/oksasatya/midnight-circuit/pkg/mailer"
)

// EventPublisher forwards fan-out events to the notification worker.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier records notifications and forwards them to the worker queue.
type Notifier struct {
	Repo      repository.NotificationRepository
	Publisher EventPublisher
	Logger    *logrus.Logger

	now func() time.Time
}

func NewNotifier(repo repository.NotificationRepository, pub EventPublisher, logger *logrus.Logger) *Notifier {
	return &Notifier{Repo: repo, Publisher: pub, Logger: logger, now: time.Now}
}

// Notify records one notification for recipient. Actions on one's own content
// or profile never notify; a nil notification with a nil error is returned then.
func (n *Notifier) Notify(ctx context.Context, kind entity.NotificationKind, actor entity.Actor, recipient, text, preview string) (*entity.Notification, error) {
	if recipient == "" || actor.Email == recipient {
		return nil, nil
	}
	rec := &entity.Notification{
		ID:          uuid.NewString(),
		Kind:        kind,
		ActorEmail:  actor.Email,
		ActorName:   actor.Name,
		ActorAvatar: actor.AvatarURL,
		Recipient:   recipient,
		Text:        text,
		PreviewURL:  preview,
		CreatedAt:   n.now().UTC(),
	}
	if err := n.Repo.Create(ctx, rec); err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "create notification")
	}
	notificationsCreated.Add(string(kind), 1)

	if n.Publisher != nil {
		job := mailer.NotificationJob{
			ID:         rec.ID,
			Kind:       string(rec.Kind),
			To:         rec.Recipient,
			ActorName:  rec.ActorName,
			Text:       rec.Text,
			PreviewURL: rec.PreviewURL,
			CreatedAt:  rec.CreatedAt,
		}
		if err := n.Publisher.PublishJSON(ctx, job); err != nil && n.Logger != nil {
			n.Logger.WithError(err).WithField("notification_id", rec.ID).Warn("publish notification job failed")
		}
	}
	return rec, nil
}

// List returns recipient's notifications, newest first.
func (n *Notifier) List(ctx context.Context, recipient string) ([]entity.Notification, error) {
	items, err := n.Repo.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrStorage, err, "list notifications")
	}
	return items, nil
}

// MarkAllRead flags every notification of recipient as read. Repeating it is a no-op.
func (n *Notifier) MarkAllRead(ctx context.Context, recipient string) error {
	if _, err := n.Repo.MarkAllRead(ctx, recipient); err != nil {
		return apperror.Wrap(apperror.ErrStorage, err, "mark notifications read")
	}
	return nil
}
