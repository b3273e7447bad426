package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
)

// Ledger awards experience and keeps levels in step with it.
type Ledger struct {
	Users  repository.UserRepository
	Logger *logrus.Logger
}

func NewLedger(users repository.UserRepository, logger *logrus.Logger) *Ledger {
	return &Ledger{Users: users, Logger: logger}
}

// AwardExperience adds amount to the user's xp. An empty or unknown email is
// skipped without error; rewards are best-effort.
func (l *Ledger) AwardExperience(ctx context.Context, email string, amount int64) error {
	if email == "" || amount <= 0 {
		return nil
	}
	u, err := l.Users.AddExperience(ctx, email, amount)
	if errors.Is(err, repository.ErrNotFound) {
		if l.Logger != nil {
			l.Logger.WithField("email", email).Debug("xp award skipped: unknown user")
		}
		return nil
	}
	if err != nil {
		return apperror.Wrap(apperror.ErrStorage, err, "award experience")
	}
	if l.Logger != nil {
		l.Logger.WithFields(logrus.Fields{"email": email, "amount": amount, "xp": u.XP, "level": u.Level}).Debug("xp awarded")
	}
	return nil
}
