package services

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/filestorage"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/metrics"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/sanitize"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/validation"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/websocket"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// ChatService defines direct messaging operations. It also handles the
// frames read from websocket sessions.
type ChatService interface {
	websocket.FrameHandler

	Send(ctx context.Context, senderID int64, frame *dto.ChatFrame) (*dto.MessageOut, error)
	MarkRead(ctx context.Context, readerID, friendID int64) (int64, error)
	Conversations(ctx context.Context, userID int64) ([]dto.ConversationOut, error)
	History(ctx context.Context, userID, friendID int64, limit int, before *time.Time) ([]dto.MessageOut, error)
	Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*dto.ChatUploadResponse, error)
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	messageRepo repositories.IMessageRepository
	userRepo    repositories.IUserRepository
	fileStorage filestorage.FileStorage
	relayer     Relayer
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewChatService creates a new ChatService. relayer may be nil.
func NewChatService(
	messageRepo repositories.IMessageRepository,
	userRepo repositories.IUserRepository,
	fileStorage filestorage.FileStorage,
	relayer Relayer,
	logger zerolog.Logger,
) ChatService {
	if relayer == nil {
		relayer = nopRelayer{}
	}
	return &chatServiceImpl{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
		relayer:     relayer,
		metrics:     metrics.Get(),
		logger:      logger,
	}
}

// HandleFrame dispatches one inbound websocket frame. Rejected frames are
// answered with an error event to the sender and otherwise dropped.
func (s *chatServiceImpl) HandleFrame(ctx context.Context, userID int64, raw []byte) {
	var frame dto.ChatFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Malformed chat frame")
		s.reject(userID, "Malformed message")
		return
	}

	switch frame.Action {
	case dto.ChatActionRead:
		friendID := frame.FriendID
		if friendID == 0 {
			friendID = frame.ReceiverID
		}
		if _, err := s.MarkRead(ctx, userID, friendID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Int64("friendID", friendID).Msg("Failed to mark messages read")
			s.reject(userID, errorMessage(err))
		}
	case "", dto.ChatActionSend:
		if _, err := s.Send(ctx, userID, &frame); err != nil {
			s.logger.Warn().Err(err).Int64("senderID", userID).Int64("receiverID", frame.ReceiverID).Msg("Chat message rejected")
			s.reject(userID, errorMessage(err))
		}
	default:
		s.reject(userID, "Unknown action")
	}
}

func errorMessage(err error) string {
	if msg, ok := apperrors.MessageOf(err); ok {
		return msg
	}
	if apperrors.Is(err, apperrors.ErrUserNotFound) {
		return "Receiver not found"
	}
	return "Message could not be delivered"
}

func (s *chatServiceImpl) reject(userID int64, message string) {
	s.relayer.Relay(userID, websocket.Event{Type: websocket.EventError, Data: dto.ChatErrorEvent{Message: message}})
}

// validateFrame checks the declared kind against the payload
func validateFrame(senderID int64, frame *dto.ChatFrame) error {
	if !frame.MessageType.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidMessageKind, "Invalid message type")
	}
	if frame.ReceiverID <= 0 || frame.ReceiverID == senderID {
		return apperrors.Wrap(apperrors.ErrInvalidMessageContent, "Invalid receiver")
	}

	switch frame.MessageType {
	case models.MessageTypeLink:
		if !validation.IsHTTPURL(frame.Content) {
			return apperrors.Wrap(apperrors.ErrInvalidMessageContent, "Link messages must contain a valid URL")
		}
	case models.MessageTypeImage, models.MessageTypeFile:
		if frame.FileURL == nil || strings.TrimSpace(*frame.FileURL) == "" {
			return apperrors.Wrap(apperrors.ErrInvalidMessageContent, "File URL is required for this message type")
		}
	case models.MessageTypeText:
		if strings.TrimSpace(frame.Content) == "" {
			return apperrors.Wrap(apperrors.ErrInvalidMessageContent, "Message content is required")
		}
	}
	return nil
}

// Send persists a message and relays it to both participants
func (s *chatServiceImpl) Send(ctx context.Context, senderID int64, frame *dto.ChatFrame) (*dto.MessageOut, error) {
	if err := validateFrame(senderID, frame); err != nil {
		return nil, err
	}
	exists, err := s.userRepo.Exists(ctx, frame.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.Wrap(apperrors.ErrUserNotFound, "Receiver not found")
	}

	msg := &models.Message{
		SenderID:    senderID,
		ReceiverID:  frame.ReceiverID,
		MessageType: frame.MessageType,
		FileURL:     frame.FileURL,
	}
	if frame.MessageType == models.MessageTypeLink {
		msg.Content = strings.TrimSpace(frame.Content)
	} else {
		msg.Content = sanitize.Text(frame.Content)
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.metrics.ChatMessagesTotal.Inc()

	out := dto.NewMessageOut(msg)
	event := websocket.Event{Type: websocket.EventMessage, Data: out}
	s.relayer.Relay(msg.SenderID, event)
	s.relayer.Relay(msg.ReceiverID, event)
	s.relayer.Relay(msg.ReceiverID, websocket.Event{
		Type: websocket.EventNewMessage,
		Data: dto.NewMessagePing{MessageID: msg.ID, SenderID: msg.SenderID},
	})
	s.pushConversation(ctx, msg.SenderID, msg.ReceiverID)
	s.pushConversation(ctx, msg.ReceiverID, msg.SenderID)

	return &out, nil
}

// pushConversation relays viewerID's fresh view of the conversation with otherID
func (s *chatServiceImpl) pushConversation(ctx context.Context, viewerID, otherID int64) {
	conv, err := s.messageRepo.Conversation(ctx, viewerID, otherID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", viewerID).Int64("otherID", otherID).Msg("Failed to load conversation update")
		return
	}
	if conv == nil {
		return
	}
	s.relayer.Relay(viewerID, websocket.Event{
		Type: websocket.EventConversationUpdate,
		Data: dto.NewConversationOut(conv, viewerID),
	})
}

// MarkRead marks friendID's messages to readerID as read and tells the friend
func (s *chatServiceImpl) MarkRead(ctx context.Context, readerID, friendID int64) (int64, error) {
	if friendID <= 0 || friendID == readerID {
		return 0, apperrors.NewBadRequestError("Invalid friend ID")
	}
	count, err := s.messageRepo.MarkRead(ctx, readerID, friendID)
	if err != nil {
		return 0, err
	}

	s.relayer.Relay(friendID, websocket.Event{
		Type: websocket.EventReadReceipt,
		Data: dto.ReadReceipt{ReaderID: readerID, FriendID: friendID, ReadAt: time.Now().UTC(), Count: count},
	})
	s.pushConversation(ctx, readerID, friendID)
	return count, nil
}

func (s *chatServiceImpl) Conversations(ctx context.Context, userID int64) ([]dto.ConversationOut, error) {
	convs, err := s.messageRepo.Conversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConversationOut, len(convs))
	for i := range convs {
		out[i] = dto.NewConversationOut(&convs[i], userID)
	}
	return out, nil
}

// History returns the conversation oldest first and marks incoming messages read
func (s *chatServiceImpl) History(ctx context.Context, userID, friendID int64, limit int, before *time.Time) ([]dto.MessageOut, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	msgs, err := s.messageRepo.History(ctx, userID, friendID, limit, before)
	if err != nil {
		return nil, err
	}

	unread := false
	for _, m := range msgs {
		if m.ReceiverID == userID && !m.IsRead {
			unread = true
			break
		}
	}
	if unread {
		if _, err := s.MarkRead(ctx, userID, friendID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Int64("friendID", friendID).Msg("Failed to mark history read")
		}
	}

	out := make([]dto.MessageOut, len(msgs))
	for i := range msgs {
		out[i] = dto.NewMessageOut(&msgs[i])
	}
	return out, nil
}

// Upload stores a chat attachment and returns its public URL
func (s *chatServiceImpl) Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*dto.ChatUploadResponse, error) {
	if file == nil {
		return nil, apperrors.NewBadRequestError("A file is required")
	}
	if _, err := filestorage.CheckExtension(file.Filename, filestorage.ChatAttachmentExtensions); err != nil {
		return nil, err
	}
	stored, err := s.fileStorage.Save(ctx, filestorage.CategoryChat, file)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Str("key", stored.Key).Msg("Chat attachment uploaded")
	return &dto.ChatUploadResponse{FileURL: stored.URL}, nil
}
