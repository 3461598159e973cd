package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/email"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/websocket"
)

// The in-memory repositories below embed their interface so that methods a
// test does not exercise panic instead of silently returning zero values.

type memUsers struct {
	repositories.IUserRepository
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[int64]*models.User)}
}

func (m *memUsers) add(username string) *models.User {
	u := &models.User{Username: username, Email: username + "@uni.edu", IsActive: true, IsVerified: true}
	_ = m.Create(context.Background(), u)
	return u
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
		if existing.Username == u.Username {
			return apperrors.ErrUsernameAlreadyExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.IsActive = true
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, addr string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, addr) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUsers) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if u, err := m.GetByEmail(ctx, identifier); err == nil {
		return u, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUsers) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[id]
	return ok, nil
}

func (m *memUsers) SetOTP(_ context.Context, id int64, code string, expiry time.Time, purpose models.OTPPurpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID[id]
	u.OTP, u.OTPExpiry, u.OTPPurpose = &code, &expiry, &purpose
	return nil
}

func (m *memUsers) MarkVerified(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID[id]
	u.IsVerified = true
	u.OTP, u.OTPExpiry, u.OTPPurpose = nil, nil, nil
	return nil
}

func (m *memUsers) GetSummaries(_ context.Context, ids []int64) ([]models.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.UserSummary{}
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

type memTokens struct {
	repositories.ITokenRepository
	tokens map[string]int64
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]int64)}
}

func (m *memTokens) CreateToken(_ context.Context, token string, userID int64, _ time.Time) error {
	m.tokens[token] = userID
	return nil
}

// capturingMailer remembers the last code sent to each address
type capturingMailer struct {
	codes map[string]string
}

func (m *capturingMailer) SendOTP(_ context.Context, to, _, code string, _ email.Purpose, _ time.Duration) error {
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[to] = code
	return nil
}

type memConnections struct {
	repositories.IConnectionRepository
	nextID int64
	byID   map[int64]*models.Connection
}

func newMemConnections() *memConnections {
	return &memConnections{byID: make(map[int64]*models.Connection)}
}

func (m *memConnections) Create(_ context.Context, requesterID, recipientID int64) (*models.Connection, error) {
	m.nextID++
	c := &models.Connection{ID: m.nextID, RequesterID: requesterID, RecipientID: recipientID, Status: models.ConnectionPending}
	m.byID[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memConnections) GetByID(_ context.Context, id int64) (*models.Connection, error) {
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, apperrors.NewResourceNotFoundError("Connection not found")
}

func (m *memConnections) FindActiveBetween(_ context.Context, a, b int64) (*models.Connection, error) {
	for _, c := range m.byID {
		pair := (c.RequesterID == a && c.RecipientID == b) || (c.RequesterID == b && c.RecipientID == a)
		if pair && (c.Status == models.ConnectionPending || c.Status == models.ConnectionAccepted) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memConnections) UpdateStatus(_ context.Context, id int64, status models.ConnectionStatus) (*models.Connection, error) {
	c := m.byID[id]
	c.Status = status
	cp := *c
	return &cp, nil
}

func (m *memConnections) ListFriendIDs(_ context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for _, c := range m.byID {
		if c.Status == models.ConnectionAccepted && (c.RequesterID == userID || c.RecipientID == userID) {
			ids = append(ids, c.Other(userID))
		}
	}
	return ids, nil
}

type memPosts struct {
	repositories.IPostRepository
	byID map[int64]*models.Post
}

func newMemPosts(posts ...*models.Post) *memPosts {
	m := &memPosts{byID: make(map[int64]*models.Post)}
	for _, p := range posts {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memPosts) Create(_ context.Context, p *models.Post) error {
	p.ID = int64(len(m.byID) + 1)
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPosts) GetByID(_ context.Context, id int64) (*models.Post, error) {
	if p, ok := m.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperrors.ErrPostNotFound
}

// memLikes mirrors the toggle semantics of the SQL implementation
type memLikes struct {
	repositories.ILikeRepository
	posts *memPosts
	liked map[[2]int64]bool
}

func newMemLikes(posts *memPosts) *memLikes {
	return &memLikes{posts: posts, liked: make(map[[2]int64]bool)}
}

func (m *memLikes) TogglePostLike(_ context.Context, userID, postID int64) (bool, int, error) {
	p, ok := m.posts.byID[postID]
	if !ok {
		return false, 0, apperrors.ErrPostNotFound
	}
	key := [2]int64{userID, postID}
	delta := 1
	if m.liked[key] {
		delete(m.liked, key)
		delta = -1
	} else {
		m.liked[key] = true
	}
	p.LikeCount += delta
	if p.LikeCount < 0 {
		p.LikeCount = 0
	}
	return delta > 0, p.LikeCount, nil
}

type memComments struct {
	repositories.ICommentRepository
	nextID int64
	byID   map[int64]*models.Comment
}

func newMemComments() *memComments {
	return &memComments{byID: make(map[int64]*models.Comment)}
}

func (m *memComments) Create(_ context.Context, c *models.Comment) error {
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memComments) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, apperrors.ErrCommentNotFound
}

type memNotifications struct {
	repositories.INotificationRepository
	mu    sync.Mutex
	items []*models.Notification
}

func (m *memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = int64(len(m.items) + 1)
	m.items = append(m.items, n)
	return nil
}

func (m *memNotifications) CreateMany(ctx context.Context, ns []*models.Notification) error {
	for _, n := range ns {
		if err := m.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (m *memNotifications) ofType(typ models.NotificationType) []*models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Notification
	for _, n := range m.items {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type memMessages struct {
	repositories.IMessageRepository
	items []models.Message
}

func (m *memMessages) Create(_ context.Context, msg *models.Message) error {
	msg.ID = int64(len(m.items) + 1)
	msg.Timestamp = time.Now().UTC()
	m.items = append(m.items, *msg)
	return nil
}

func (m *memMessages) MarkRead(_ context.Context, readerID, friendID int64) (int64, error) {
	var n int64
	for i := range m.items {
		if m.items[i].ReceiverID == readerID && m.items[i].SenderID == friendID && !m.items[i].IsRead {
			m.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memMessages) Conversation(_ context.Context, me, other int64) (*models.Conversation, error) {
	var last *models.Message
	unread := 0
	for i := range m.items {
		msg := &m.items[i]
		if (msg.SenderID == me && msg.ReceiverID == other) || (msg.SenderID == other && msg.ReceiverID == me) {
			last = msg
			if msg.ReceiverID == me && !msg.IsRead {
				unread++
			}
		}
	}
	if last == nil {
		return nil, nil
	}
	return &models.Conversation{UserID: other, LastMessage: *last, UnreadCount: unread}, nil
}

// recordingRelayer stands in for the hub; only users in online receive events
type recordingRelayer struct {
	mu     sync.Mutex
	online map[int64]bool
	events map[int64][]websocket.Event
}

func newRecordingRelayer(online ...int64) *recordingRelayer {
	r := &recordingRelayer{online: make(map[int64]bool), events: make(map[int64][]websocket.Event)}
	for _, id := range online {
		r.online[id] = true
	}
	return r
}

func (r *recordingRelayer) Relay(userID int64, event websocket.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.online[userID] {
		r.events[userID] = append(r.events[userID], event)
	}
}

func (r *recordingRelayer) IsOnline(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.online[userID]
}

func (r *recordingRelayer) types(userID int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events[userID] {
		out = append(out, e.Type)
	}
	return out
}

type memResearch struct {
	repositories.IResearchRepository
	topics        map[int64]*models.ResearchCollaboration
	requests      map[int64]*models.CollaborationRequest
	collaborators map[[2]int64]bool
}

func newMemResearch(topics ...*models.ResearchCollaboration) *memResearch {
	m := &memResearch{
		topics:        make(map[int64]*models.ResearchCollaboration),
		requests:      make(map[int64]*models.CollaborationRequest),
		collaborators: make(map[[2]int64]bool),
	}
	for _, t := range topics {
		m.topics[t.ID] = t
	}
	return m
}

func (m *memResearch) GetCollaboration(_ context.Context, id int64) (*models.ResearchCollaboration, error) {
	if t, ok := m.topics[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, apperrors.ErrResearchNotFound
}

func (m *memResearch) IsCollaborator(_ context.Context, researchID, userID int64) (bool, error) {
	return m.collaborators[[2]int64{researchID, userID}], nil
}

func (m *memResearch) HasPendingRequest(_ context.Context, researchID, userID int64) (bool, error) {
	for _, r := range m.requests {
		if r.ResearchID == researchID && r.RequesterID == userID && r.Status == models.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memResearch) CreateRequest(_ context.Context, req *models.CollaborationRequest) error {
	req.ID = int64(len(m.requests) + 1)
	req.Status = models.RequestPending
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *memResearch) GetRequest(_ context.Context, id int64) (*models.CollaborationRequest, error) {
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, apperrors.NewResourceNotFoundError("Collaboration request not found")
}

func (m *memResearch) AcceptRequest(_ context.Context, id int64) (*models.CollaborationRequest, error) {
	r := m.requests[id]
	if r.Status != models.RequestPending {
		return nil, apperrors.ErrRequestNotPending
	}
	key := [2]int64{r.ResearchID, r.RequesterID}
	if m.collaborators[key] {
		return nil, apperrors.ErrAlreadyCollaborator
	}
	m.collaborators[key] = true
	r.Status = models.RequestAccepted
	cp := *r
	return &cp, nil
}
