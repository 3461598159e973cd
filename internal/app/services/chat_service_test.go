package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/websocket"
)

type chatFixture struct {
	svc      ChatService
	messages *memMessages
	relayer  *recordingRelayer
	alice    *models.User
	bob      *models.User
}

func newChatFixture(online ...int64) *chatFixture {
	users := newMemUsers()
	alice, bob := users.add("alice"), users.add("bob")
	messages := &memMessages{}
	relayer := newRecordingRelayer(online...)
	return &chatFixture{
		svc:      NewChatService(messages, users, nil, relayer, zerolog.Nop()),
		messages: messages,
		relayer:  relayer,
		alice:    alice,
		bob:      bob,
	}
}

func TestChatService_SendToOfflineUserPersists(t *testing.T) {
	f := newChatFixture(1) // only alice is connected

	out, err := f.svc.Send(context.Background(), f.alice.ID, &dto.ChatFrame{
		ReceiverID:  f.bob.ID,
		Content:     "hi bob",
		MessageType: models.MessageTypeText,
	})
	require.NoError(t, err)
	assert.NotZero(t, out.ID)

	require.Len(t, f.messages.items, 1)
	stored := f.messages.items[0]
	assert.Equal(t, f.alice.ID, stored.SenderID)
	assert.Equal(t, f.bob.ID, stored.ReceiverID)
	assert.Equal(t, "hi bob", stored.Content)
	assert.False(t, stored.IsRead)

	assert.Equal(t, []string{websocket.EventMessage, websocket.EventConversationUpdate}, f.relayer.types(f.alice.ID))
	assert.Empty(t, f.relayer.types(f.bob.ID))
}

func TestChatService_SendRelaysToBothSides(t *testing.T) {
	f := newChatFixture(1, 2)

	_, err := f.svc.Send(context.Background(), f.alice.ID, &dto.ChatFrame{
		ReceiverID:  f.bob.ID,
		Content:     "https://example.com/paper",
		MessageType: models.MessageTypeLink,
	})
	require.NoError(t, err)

	assert.Equal(t,
		[]string{websocket.EventMessage, websocket.EventNewMessage, websocket.EventConversationUpdate},
		f.relayer.types(f.bob.ID))

	bobEvents := f.relayer.events[f.bob.ID]
	update, ok := bobEvents[2].Data.(dto.ConversationOut)
	require.True(t, ok)
	assert.Equal(t, 1, update.UnreadCount)
	assert.False(t, update.IsSender)
}

func TestChatService_RejectsInvalidFrames(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()

	tests := []struct {
		name  string
		frame dto.ChatFrame
		want  error
	}{
		{"unknown kind", dto.ChatFrame{ReceiverID: 2, Content: "x", MessageType: "video"}, apperrors.ErrInvalidMessageKind},
		{"link without url", dto.ChatFrame{ReceiverID: 2, Content: "not a link", MessageType: models.MessageTypeLink}, apperrors.ErrInvalidMessageContent},
		{"image without file", dto.ChatFrame{ReceiverID: 2, MessageType: models.MessageTypeImage}, apperrors.ErrInvalidMessageContent},
		{"empty text", dto.ChatFrame{ReceiverID: 2, Content: "   ", MessageType: models.MessageTypeText}, apperrors.ErrInvalidMessageContent},
		{"to self", dto.ChatFrame{ReceiverID: 1, Content: "me", MessageType: models.MessageTypeText}, apperrors.ErrInvalidMessageContent},
		{"unknown receiver", dto.ChatFrame{ReceiverID: 99, Content: "hi", MessageType: models.MessageTypeText}, apperrors.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := tt.frame
			_, err := f.svc.Send(ctx, f.alice.ID, &frame)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.messages.items)

	_, err := f.svc.Send(ctx, f.alice.ID, &dto.ChatFrame{
		ReceiverID: 2, MessageType: models.MessageTypeFile, FileURL: helpers.Ptr("http://localhost/uploads/chat/a.pdf"),
	})
	assert.NoError(t, err)
}

func TestChatService_HandleFrameRepliesWithError(t *testing.T) {
	f := newChatFixture(1)

	raw, err := json.Marshal(dto.ChatFrame{ReceiverID: f.bob.ID, MessageType: "video"})
	require.NoError(t, err)
	f.svc.HandleFrame(context.Background(), f.alice.ID, raw)
	f.svc.HandleFrame(context.Background(), f.alice.ID, []byte("{not json"))

	assert.Equal(t, []string{websocket.EventError, websocket.EventError}, f.relayer.types(f.alice.ID))
	assert.Empty(t, f.messages.items)
}

func TestChatService_ReadFrameSendsReceipt(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(1, 2)

	_, err := f.svc.Send(ctx, f.alice.ID, &dto.ChatFrame{ReceiverID: f.bob.ID, Content: "one", MessageType: models.MessageTypeText})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.alice.ID, &dto.ChatFrame{ReceiverID: f.bob.ID, Content: "two", MessageType: models.MessageTypeText})
	require.NoError(t, err)

	raw, err := json.Marshal(dto.ChatFrame{Action: dto.ChatActionRead, FriendID: f.alice.ID})
	require.NoError(t, err)
	f.svc.HandleFrame(ctx, f.bob.ID, raw)

	aliceEvents := f.relayer.events[f.alice.ID]
	last := aliceEvents[len(aliceEvents)-1]
	require.Equal(t, websocket.EventReadReceipt, last.Type)
	receipt := last.Data.(dto.ReadReceipt)
	assert.Equal(t, int64(2), receipt.Count)
	assert.Equal(t, f.bob.ID, receipt.ReaderID)

	for _, m := range f.messages.items {
		assert.True(t, m.IsRead)
	}
}
