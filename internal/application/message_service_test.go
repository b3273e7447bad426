package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/infrastructure/memory"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
)

func TestConversationBothDirections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@mc.test", "Ana")
	f.addUser(t, "b@mc.test", "Ben")
	f.addUser(t, "c@mc.test", "Cid")
	msgs := application.NewMessages(memory.NewMessageRepository(), f.users)

	_, err := msgs.Send(ctx, "a@mc.test", "b@mc.test", "meet at 11?")
	require.NoError(t, err)
	_, err = msgs.Send(ctx, "b@mc.test", "a@mc.test", " sure ")
	require.NoError(t, err)
	_, err = msgs.Send(ctx, "c@mc.test", "a@mc.test", "unrelated")
	require.NoError(t, err)

	conv, err := msgs.Conversation(ctx, "b@mc.test", "a@mc.test")
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "meet at 11?", conv[0].Text)
	assert.Equal(t, "sure", conv[1].Text)
	assert.Equal(t, "b@mc.test", conv[1].From)
}

func TestSendValidatesTextAndRecipient(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a@mc.test", "Ana")
	msgs := application.NewMessages(memory.NewMessageRepository(), f.users)

	_, err := msgs.Send(context.Background(), "a@mc.test", "ghost@mc.test", "hi")
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = msgs.Send(context.Background(), "a@mc.test", "a@mc.test", "  ")
	require.ErrorIs(t, err, apperror.ErrValidation)
}
