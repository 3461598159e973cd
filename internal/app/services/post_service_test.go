package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

func newPostFixture() (PostService, *memPosts) {
	users := newMemUsers()
	users.add("author")
	posts := newMemPosts()
	notifier := NewNotificationService(&memNotifications{}, users, newRecordingRelayer(), zerolog.Nop())
	return NewPostService(posts, newMemConnections(), nil, notifier, nil, nil, nil, zerolog.Nop()), posts
}

func TestPostService_CreateTextRecordsHashtags(t *testing.T) {
	svc, posts := newPostFixture()

	resp, err := svc.CreateText(context.Background(), 1, "Great day at #TestUniversity with #friends #testuniversity")
	require.NoError(t, err)

	stored := posts.byID[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, models.PostTypeText, stored.PostType)
	assert.Equal(t, []string{"testuniversity", "friends"}, stored.Hashtags)
}

func TestPostService_CreateTextRejectsEmpty(t *testing.T) {
	svc, posts := newPostFixture()

	_, err := svc.CreateText(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Empty(t, posts.byID)
}
