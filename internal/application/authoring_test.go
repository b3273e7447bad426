package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/midnight-circuit/internal/application"
	"github.com/oksasatya/midnight-circuit/internal/domain/entity"
	"github.com/oksasatya/midnight-circuit/pkg/apperror"
)

func TestCreateRewardsOwnerPerKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")

	_, err := f.authoring.CreateContent(ctx, entity.KindPost, ana, application.ContentInput{Body: "hello"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 50, f.user(t, "a@mc.test").XP)

	club, err := f.authoring.CreateContent(ctx, entity.KindCommunity, ana, application.ContentInput{Title: "Drift Club", Body: "sideways"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 200, f.user(t, "a@mc.test").XP)
	assert.Equal(t, "https://via.placeholder.com/800", club.MediaURL)

	_, err = f.authoring.CreateContent(ctx, entity.KindTopic, ana, application.ContentInput{Title: "Sunday meet", CommunityID: club.ID}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 230, f.user(t, "a@mc.test").XP)

	_, err = f.authoring.CreateContent(ctx, entity.KindVehicle, ana, application.ContentInput{Brand: "Mazda", Model: "RX-7", OwnerName: "Ana"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 330, f.user(t, "a@mc.test").XP)

	_, err = f.authoring.CreateContent(ctx, entity.KindSprint, ana, application.ContentInput{Body: "launch"}, &application.MediaUpload{
		Filename: "launch.jpg", ContentType: "image/jpeg", Reader: strings.NewReader("jpeg"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 370, f.user(t, "a@mc.test").XP)

	// Creation never notifies anyone.
	assert.Zero(t, f.notes.Len())
}

func TestCreateSprintRequiresMedia(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")

	_, err := f.authoring.CreateContent(context.Background(), entity.KindSprint, ana, application.ContentInput{Body: "no clip"}, nil)
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.authoring.CreateContent(context.Background(), entity.KindSprint, ana, application.ContentInput{}, &application.MediaUpload{Filename: "x.mp4"})
	require.ErrorIs(t, err, apperror.ErrValidation)

	assert.EqualValues(t, 0, f.user(t, "a@mc.test").XP)
}

func TestCreateSprintStoresVideo(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")

	c, err := f.authoring.CreateContent(context.Background(), entity.KindSprint, ana, application.ContentInput{Body: "quarter mile"}, &application.MediaUpload{
		Filename: "Run.MP4", ContentType: "video/mp4", Reader: strings.NewReader("mp4-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MediaVideo, c.MediaType)
	assert.Equal(t, "memory://sprints/"+c.ID+".mp4", c.MediaURL)

	b, ok := f.media.Object("sprints/" + c.ID + ".mp4")
	require.True(t, ok)
	assert.Equal(t, "mp4-bytes", string(b))
}

func TestCreateVehicleResolvesOwnerByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")
	f.addUser(t, "b@mc.test", "Ben")

	v, err := f.authoring.CreateContent(ctx, entity.KindVehicle, ana, application.ContentInput{
		Brand:     "Toyota",
		Model:     "Supra",
		Nickname:  "Blue",
		OwnerName: "Ben",
		Specs:     map[string]string{"hp": "700"},
		Mods:      []string{" turbo ", "", "coilovers"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "b@mc.test", v.OwnerEmail)
	assert.Equal(t, "a@mc.test", v.AuthorEmail)
	assert.Equal(t, []string{"turbo", "coilovers"}, v.Vehicle.Mods)
	assert.Equal(t, "https://via.placeholder.com/600", v.MediaURL)

	// The declared owner gets the reward, not the author.
	assert.EqualValues(t, 100, f.user(t, "b@mc.test").XP)
	assert.EqualValues(t, 0, f.user(t, "a@mc.test").XP)
}

func TestCreateVehicleWithUnknownOwnerRewardsNobody(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")

	v, err := f.authoring.CreateContent(context.Background(), entity.KindVehicle, ana, application.ContentInput{Brand: "Honda", Model: "NSX", OwnerName: "Nobody"}, nil)
	require.NoError(t, err)
	assert.Empty(t, v.OwnerEmail)
	assert.EqualValues(t, 0, f.user(t, "a@mc.test").XP)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "a@mc.test", "Ana")

	cases := []struct {
		name string
		kind entity.Kind
		in   application.ContentInput
	}{
		{"vehicle without model", entity.KindVehicle, application.ContentInput{Brand: "BMW"}},
		{"community without name", entity.KindCommunity, application.ContentInput{Body: "nameless"}},
		{"topic without title", entity.KindTopic, application.ContentInput{CommunityID: uuid.NewString()}},
		{"topic with bad community id", entity.KindTopic, application.ContentInput{Title: "x", CommunityID: "abc"}},
		{"post too long", entity.KindPost, application.ContentInput{Body: strings.Repeat("a", 5001)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.authoring.CreateContent(ctx, tc.kind, ana, tc.in, nil)
			require.ErrorIs(t, err, apperror.ErrValidation)
			var ae *apperror.Error
			require.ErrorAs(t, err, &ae)
			assert.NotEmpty(t, ae.Details())
		})
	}
}

func TestCreateTopicRequiresExistingCommunity(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")

	_, err := f.authoring.CreateContent(context.Background(), entity.KindTopic, ana, application.ContentInput{Title: "Lost", CommunityID: uuid.NewString()}, nil)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualValues(t, 0, f.user(t, "a@mc.test").XP)
}

func TestCreateRejectsMissingAuthorAndUnknownKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.authoring.CreateContent(context.Background(), entity.KindPost, entity.Actor{}, application.ContentInput{Body: "anon"}, nil)
	require.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = f.authoring.CreateContent(context.Background(), entity.Kind("garage"), entity.Actor{Email: "a@mc.test"}, application.ContentInput{}, nil)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateStorageFailureSkipsReward(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")
	f.contents.FailWrites = errors.New("read-only replica")

	_, err := f.authoring.CreateContent(context.Background(), entity.KindPost, ana, application.ContentInput{Body: "lost"}, nil)
	require.ErrorIs(t, err, apperror.ErrStorage)
	assert.EqualValues(t, 0, f.user(t, "a@mc.test").XP)
}

func TestCreateSucceedsWhenRewardFails(t *testing.T) {
	f := newFixture(t)
	ana := f.addUser(t, "a@mc.test", "Ana")
	f.users.FailWrites = errors.New("xp column locked")

	c, err := f.authoring.CreateContent(context.Background(), entity.KindPost, ana, application.ContentInput{Body: "still here"}, nil)
	require.NoError(t, err)
	f.users.FailWrites = nil

	_, err = f.engagement.Get(context.Background(), entity.KindPost, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, f.user(t, "a@mc.test").XP)

	last := f.hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "create.reward", last.Data["effect"])
}
