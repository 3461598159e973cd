package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/auth"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

const (
	ownerID  int64 = 1
	viewerID int64 = 2
)

type reactionFixture struct {
	svc           ReactionService
	posts         *memPosts
	notifications *memNotifications
}

func newReactionFixture() *reactionFixture {
	users := newMemUsers()
	users.add("owner")
	users.add("viewer")

	text := "hello"
	posts := newMemPosts(
		&models.Post{ID: 10, UserID: ownerID, PostType: models.PostTypeText, Content: &text},
		&models.Post{ID: 11, UserID: ownerID, PostType: models.PostTypeText, Content: &text},
	)
	comments := newMemComments()
	notes := &memNotifications{}
	notifier := NewNotificationService(notes, users, newRecordingRelayer(), zerolog.Nop())
	authz := auth.NewAuthorizationService(posts, comments, nil, nil)

	svc := NewReactionService(posts, newMemLikes(posts), comments, nil, nil, nil, authz, notifier, "http://localhost:8080", zerolog.Nop())
	return &reactionFixture{svc: svc, posts: posts, notifications: notes}
}

func TestReactionService_LikeToggle(t *testing.T) {
	ctx := context.Background()
	f := newReactionFixture()

	first, err := f.svc.TogglePostLike(ctx, viewerID, 10)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, 1, first.LikeCount)

	second, err := f.svc.TogglePostLike(ctx, viewerID, 10)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, 0, second.LikeCount)

	// only the like raised a notification
	assert.Len(t, f.notifications.ofType(models.NotificationLike), 1)
}

func TestReactionService_LikeCountNeverNegative(t *testing.T) {
	ctx := context.Background()
	f := newReactionFixture()
	f.posts.byID[10].LikeCount = 0

	for i := 0; i < 5; i++ {
		resp, err := f.svc.TogglePostLike(ctx, viewerID, 10)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, resp.LikeCount, 0)
	}
}

func TestReactionService_SelfLikeDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	f := newReactionFixture()

	_, err := f.svc.TogglePostLike(ctx, ownerID, 10)
	require.NoError(t, err)
	assert.Empty(t, f.notifications.ofType(models.NotificationLike))
}

func TestReactionService_LikeUnknownPost(t *testing.T) {
	f := newReactionFixture()
	_, err := f.svc.TogglePostLike(context.Background(), viewerID, 404)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestReactionService_CommentDepth(t *testing.T) {
	ctx := context.Background()
	f := newReactionFixture()

	root, err := f.svc.AddComment(ctx, viewerID, 10, &dto.CreateCommentRequest{Content: "first"})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	reply, err := f.svc.AddComment(ctx, ownerID, 10, &dto.CreateCommentRequest{Content: "reply", ParentID: &root.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	_, err = f.svc.AddComment(ctx, viewerID, 10, &dto.CreateCommentRequest{Content: "too deep", ParentID: &reply.ID})
	assert.ErrorIs(t, err, apperrors.ErrMaxCommentDepth)

	assert.Len(t, f.notifications.ofType(models.NotificationComment), 1)
	replies := f.notifications.ofType(models.NotificationReply)
	require.Len(t, replies, 1)
	assert.Equal(t, viewerID, replies[0].RecipientID)
}

func TestReactionService_CommentParentOnOtherPost(t *testing.T) {
	ctx := context.Background()
	f := newReactionFixture()

	root, err := f.svc.AddComment(ctx, viewerID, 10, &dto.CreateCommentRequest{Content: "first"})
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, viewerID, 11, &dto.CreateCommentRequest{Content: "wrong post", ParentID: &root.ID})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestReactionService_EmptyComment(t *testing.T) {
	f := newReactionFixture()
	_, err := f.svc.AddComment(context.Background(), viewerID, 10, &dto.CreateCommentRequest{Content: "  <b></b> "})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
