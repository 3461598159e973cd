package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/auth"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

type connectionFixture struct {
	svc           ConnectionService
	users         *memUsers
	notifications *memNotifications
}

func newConnectionFixture() *connectionFixture {
	users := newMemUsers()
	conns := newMemConnections()
	notes := &memNotifications{}
	notifier := NewNotificationService(notes, users, newRecordingRelayer(), zerolog.Nop())
	authz := auth.NewAuthorizationService(nil, nil, conns, nil)
	return &connectionFixture{
		svc:           NewConnectionService(conns, users, authz, notifier, zerolog.Nop()),
		users:         users,
		notifications: notes,
	}
}

func TestConnectionService_DuplicateRequestEitherDirection(t *testing.T) {
	ctx := context.Background()
	f := newConnectionFixture()
	a, b := f.users.add("alice"), f.users.add("bob")

	conn, err := f.svc.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)
	assert.Len(t, f.notifications.ofType(models.NotificationConnectionRequest), 1)

	_, err = f.svc.SendRequest(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)
	_, err = f.svc.SendRequest(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)

	_, err = f.svc.Accept(ctx, conn.ID, b.ID)
	require.NoError(t, err)

	_, err = f.svc.SendRequest(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists, "accepted edges block new requests too")
}

func TestConnectionService_RejectedPairMayReconnect(t *testing.T) {
	ctx := context.Background()
	f := newConnectionFixture()
	a, b := f.users.add("alice"), f.users.add("bob")

	conn, err := f.svc.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, conn.ID, b.ID)
	require.NoError(t, err)

	_, err = f.svc.SendRequest(ctx, b.ID, a.ID)
	assert.NoError(t, err)
}

func TestConnectionService_OnlyRecipientAccepts(t *testing.T) {
	ctx := context.Background()
	f := newConnectionFixture()
	a, b, c := f.users.add("alice"), f.users.add("bob"), f.users.add("carol")

	conn, err := f.svc.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, conn.ID, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = f.svc.Accept(ctx, conn.ID, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	accepted, err := f.svc.Accept(ctx, conn.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, accepted.Status)

	notes := f.notifications.ofType(models.NotificationConnectionAccepted)
	require.Len(t, notes, 1)
	assert.Equal(t, a.ID, notes[0].RecipientID)

	_, err = f.svc.Accept(ctx, conn.ID, b.ID)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotPending)
}

func TestConnectionService_SendRequestValidation(t *testing.T) {
	ctx := context.Background()
	f := newConnectionFixture()
	a := f.users.add("alice")

	_, err := f.svc.SendRequest(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.svc.SendRequest(ctx, a.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
