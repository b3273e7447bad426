package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/internal/domain/repository"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
)

func (f *fixture) post(t *testing.T, author entity.Actor, body string) *entity.Content {
	t.Helper()
	c, err := f.authoring.CreateContent(context.Background(), entity.KindPost, author, application.ContentInput{Body: body}, nil)
	require.NoError(t, err)
	return c
}

func TestLikeCountsAndNotifiesOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")
	ben := f.addUser(t, "b@mc.test", "Ben")
	p := f.post(t, ana, "night run")

	n, err := f.engagement.Like(ctx, entity.KindPost, p.ID, ben)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = f.engagement.Like(ctx, entity.KindPost, p.ID, ben)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	inbox := f.inbox(t, "a@mc.test")
	require.Len(t, inbox, 2)
	assert.Equal(t, entity.NotificationLike, inbox[0].Kind)
	assert.Equal(t, "liked your post.", inbox[0].Text)
	assert.Equal(t, "Ben", inbox[0].ActorName)
}

func TestLikeOwnContentDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")
	p := f.post(t, ana, "self love")

	n, err := f.engagement.Like(context.Background(), entity.KindPost, p.ID, ana)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Empty(t, f.inbox(t, "a@mc.test"))
}

func TestLikeUnknownOrMalformedID(t *testing.T) {
	f := newFixture(t)
	ben := f.addUser(t, "b@mc.test", "Ben")

	_, err := f.engagement.Like(context.Background(), entity.KindPost, "not-a-uuid", ben)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.engagement.Like(context.Background(), entity.KindSprint, uuid.NewString(), ben)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.engagement.Like(context.Background(), entity.Kind("garage"), uuid.NewString(), ben)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLikeWrongKindIsNotFound(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")
	p := f.post(t, ana, "post, not topic")

	_, err := f.engagement.Like(context.Background(), entity.KindTopic, p.ID, ana)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLikeStorageFailureSkipsNotification(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")
	ben := f.addUser(t, "b@mc.test", "Ben")
	p := f.post(t, ana, "flaky db")
	f.contents.FailWrites = errors.New("broken pipe")

	_, err := f.engagement.Like(context.Background(), entity.KindPost, p.ID, ben)
	require.ErrorIs(t, err, apperror.ErrStorage)
	assert.Empty(t, f.inbox(t, "a@mc.test"))
}

func TestCommentAppendsAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")
	ben := f.addUser(t, "b@mc.test", "Ben")
	p := f.post(t, ana, "thoughts?")

	comments, err := f.engagement.Comment(ctx, entity.KindPost, p.ID, ben, "  clean build  ")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "clean build", comments[0].Text)
	assert.Equal(t, "Ben", comments[0].AuthorName)
	assert.Equal(t, ben.AvatarURL, comments[0].AuthorAvatar)

	comments, err = f.engagement.Comment(ctx, entity.KindPost, p.ID, ana, "thanks")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "thanks", comments[1].Text)

	// Only Ben's comment notified Ana.
	inbox := f.inbox(t, "a@mc.test")
	require.Len(t, inbox, 1)
	assert.Equal(t, entity.NotificationComment, inbox[0].Kind)
	assert.Equal(t, "commented on your post.", inbox[0].Text)
}

func TestCommentRequiresText(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")
	p := f.post(t, ana, "quiet")

	_, err := f.engagement.Comment(context.Background(), entity.KindPost, p.ID, ana, "   ")
	require.ErrorIs(t, err, apperror.ErrValidation)

	got, err := f.engagement.Get(context.Background(), entity.KindPost, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestTopicCommentUsesReplyText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")
	ben := f.addUser(t, "b@mc.test", "Ben")

	club, err := f.authoring.CreateContent(ctx, entity.KindCommunity, ana, application.ContentInput{Title: "JDM"}, nil)
	require.NoError(t, err)
	topic, err := f.authoring.CreateContent(ctx, entity.KindTopic, ana, application.ContentInput{Title: "Meet", CommunityID: club.ID}, nil)
	require.NoError(t, err)

	_, err = f.engagement.Comment(ctx, entity.KindTopic, topic.ID, ben, "count me in")
	require.NoError(t, err)
	inbox := f.inbox(t, "a@mc.test")
	require.Len(t, inbox, 1)
	assert.Equal(t, "replied to your topic.", inbox[0].Text)
}

func TestUnownedVehicleEngagementDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")
	ben := f.addUser(t, "b@mc.test", "Ben")

	v, err := f.authoring.CreateContent(ctx, entity.KindVehicle, ana, application.ContentInput{
		Brand: "Nissan", Model: "Silvia S15", OwnerName: "Somebody Else",
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, v.OwnerEmail)

	_, err = f.engagement.Like(ctx, entity.KindVehicle, v.ID, ben)
	require.NoError(t, err)
	_, err = f.engagement.Comment(ctx, entity.KindVehicle, v.ID, ben, "clean")
	require.NoError(t, err)
	assert.Zero(t, f.notes.Len())
}

func TestJoinCommunityIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")
	f.addUser(t, "b@mc.test", "Ben")

	club, err := f.authoring.CreateContent(ctx, entity.KindCommunity, ana, application.ContentInput{Title: "Touge"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@mc.test"}, club.Members)

	require.NoError(t, f.engagement.JoinCommunity(ctx, club.ID, "b@mc.test"))
	require.NoError(t, f.engagement.JoinCommunity(ctx, club.ID, "b@mc.test"))
	require.NoError(t, f.engagement.JoinCommunity(ctx, club.ID, "a@mc.test"))

	got, err := f.engagement.Get(ctx, entity.KindCommunity, club.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@mc.test", "b@mc.test"}, got.Members)
	assert.Equal(t, []string{"a@mc.test"}, got.Admins)
	assert.Zero(t, f.notes.Len())

	require.ErrorIs(t, f.engagement.JoinCommunity(ctx, uuid.NewString(), "b@mc.test"), apperror.ErrNotFound)
	require.ErrorIs(t, f.engagement.JoinCommunity(ctx, club.ID, ""), apperror.ErrNotFound)
}

func TestDeleteRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")
	f.addUser(t, "b@mc.test", "Ben")
	p := f.post(t, ana, "temporary")

	require.ErrorIs(t, f.engagement.Delete(ctx, entity.KindPost, p.ID, "b@mc.test"), apperror.ErrForbidden)
	require.ErrorIs(t, f.engagement.Delete(ctx, entity.KindPost, p.ID, ""), apperror.ErrForbidden)
	require.NoError(t, f.engagement.Delete(ctx, entity.KindPost, p.ID, "a@mc.test"))

	_, err := f.engagement.Get(ctx, entity.KindPost, p.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListByKindAndCommunity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")

	f.post(t, ana, "one")
	f.post(t, ana, "two")
	club, err := f.authoring.CreateContent(ctx, entity.KindCommunity, ana, application.ContentInput{Title: "Rotary"}, nil)
	require.NoError(t, err)
	_, err = f.authoring.CreateContent(ctx, entity.KindTopic, ana, application.ContentInput{Title: "Apex seals", CommunityID: club.ID}, nil)
	require.NoError(t, err)

	posts, err := f.engagement.List(ctx, repository.ContentFilter{Kind: entity.KindPost})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "two", posts[0].Body)

	topics, err := f.engagement.List(ctx, repository.ContentFilter{Kind: entity.KindTopic, CommunityID: club.ID})
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Apex seals", topics[0].Title)

	_, err = f.engagement.List(ctx, repository.ContentFilter{Kind: entity.Kind("garage")})
	require.ErrorIs(t, err, apperror.ErrNotFound)
}
