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

func newResearchFixture() (ResearchService, *memResearch, *memNotifications) {
	users := newMemUsers()
	users.add("creator")
	users.add("requester")
	users.add("stranger")

	research := newMemResearch(&models.ResearchCollaboration{ID: 5, Title: "Graph learning", CreatorID: 1})
	notes := &memNotifications{}
	notifier := NewNotificationService(notes, users, newRecordingRelayer(), zerolog.Nop())
	authz := auth.NewAuthorizationService(nil, nil, nil, research)
	return NewResearchService(research, users, authz, notifier, nil, zerolog.Nop()), research, notes
}

func TestResearchService_RequestWorkflow(t *testing.T) {
	ctx := context.Background()
	svc, research, notes := newResearchFixture()

	req, err := svc.RequestCollaboration(ctx, 2, 5, "I can help")
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Len(t, notes.ofType(models.NotificationCollaborationRequest), 1)

	_, err = svc.RequestCollaboration(ctx, 2, 5, "again")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.AcceptRequest(ctx, 3, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	accepted, err := svc.AcceptRequest(ctx, 1, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, accepted.Status)
	assert.True(t, research.collaborators[[2]int64{5, 2}])

	got := notes.ofType(models.NotificationCollaborationAccepted)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].RecipientID)

	_, err = svc.AcceptRequest(ctx, 1, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotPending)

	_, err = svc.RequestCollaboration(ctx, 2, 5, "once more")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyCollaborator)
}

func TestResearchService_RequestValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newResearchFixture()

	_, err := svc.RequestCollaboration(ctx, 2, 404, "hello")
	assert.ErrorIs(t, err, apperrors.ErrResearchNotFound)

	_, err = svc.RequestCollaboration(ctx, 1, 5, "my own")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.AcceptRequest(ctx, 1, 404)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestResearchService_GetCollaborationCanRequest(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newResearchFixture()

	own, err := svc.GetCollaboration(ctx, 1, 5)
	require.NoError(t, err)
	assert.False(t, own.CanRequestCollaboration)
	assert.Equal(t, "creator", own.CreatorUsername)

	other, err := svc.GetCollaboration(ctx, 3, 5)
	require.NoError(t, err)
	assert.True(t, other.CanRequestCollaboration)

	_, err = svc.RequestCollaboration(ctx, 3, 5, "")
	require.NoError(t, err)
	pending, err := svc.GetCollaboration(ctx, 3, 5)
	require.NoError(t, err)
	assert.False(t, pending.CanRequestCollaboration)
}
