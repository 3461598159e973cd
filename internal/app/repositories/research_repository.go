package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/dberrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// IResearchRepository stores papers, collaboration topics and their requests
type IResearchRepository interface {
	// Papers
	CreatePaper(ctx context.Context, p *models.ResearchPaper) error
	GetPaper(ctx context.Context, id int64) (*models.ResearchPaper, error)
	SearchPapers(ctx context.Context, keyword string) ([]models.ResearchPaper, error)
	ListPapersByUploader(ctx context.Context, userID int64) ([]models.ResearchPaper, error)
	RecommendedPapers(ctx context.Context, interests []string, limit int) ([]models.ResearchPaper, error)

	// Collaborations
	CreateCollaboration(ctx context.Context, c *models.ResearchCollaboration) error
	GetCollaboration(ctx context.Context, id int64) (*models.ResearchCollaboration, error)
	ListCollaborationsByCreator(ctx context.Context, creatorID int64) ([]models.ResearchCollaboration, error)
	ListOtherCollaborations(ctx context.Context, userID int64) ([]dto.CollaborationResponse, error)
	IsCollaborator(ctx context.Context, researchID, userID int64) (bool, error)
	HasPendingRequest(ctx context.Context, researchID, userID int64) (bool, error)

	// Requests
	CreateRequest(ctx context.Context, req *models.CollaborationRequest) error
	GetRequest(ctx context.Context, id int64) (*models.CollaborationRequest, error)
	ListPendingForCreator(ctx context.Context, creatorID int64) ([]dto.CollaborationRequestResponse, error)
	AcceptRequest(ctx context.Context, id int64) (*models.CollaborationRequest, error)
	RejectRequest(ctx context.Context, id int64) (*models.CollaborationRequest, error)
}

const constraintPendingRequest = "uq_collab_requests_pending"

var (
	paperColumns         = []string{"id", "title", "author", "research_field", "file_path", "original_filename", "uploader_id", "created_at"}
	collaborationColumns = []string{"r.id", "r.title", "r.research_field", "r.details", "r.creator_id", "r.created_at"}
	requestColumns       = []string{"id", "research_id", "requester_id", "message", "status", "created_at"}
)

// ResearchRepository handles research database operations
type ResearchRepository struct {
	db *pgxpool.Pool
}

// NewResearchRepository creates a new ResearchRepository
func NewResearchRepository(db *pgxpool.Pool) *ResearchRepository {
	return &ResearchRepository{db: db}
}

func scanPaper(row pgx.Row) (*models.ResearchPaper, error) {
	p := &models.ResearchPaper{}
	err := row.Scan(&p.ID, &p.Title, &p.Author, &p.ResearchField, &p.FilePath, &p.OriginalFilename, &p.UploaderID, &p.CreatedAt)
	return p, err
}

func (r *ResearchRepository) queryPapers(ctx context.Context, q squirrel.SelectBuilder) ([]models.ResearchPaper, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build papers query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying papers")
		return nil, fmt.Errorf("error querying papers: %w", err)
	}
	defer rows.Close()

	papers := []models.ResearchPaper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning paper: %w", err)
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// CreatePaper stores paper metadata
func (r *ResearchRepository) CreatePaper(ctx context.Context, p *models.ResearchPaper) error {
	sql, args, err := psql.Insert("research_papers").
		Columns("title", "author", "research_field", "file_path", "original_filename", "uploader_id").
		Values(p.Title, p.Author, p.ResearchField, p.FilePath, p.OriginalFilename, p.UploaderID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create paper query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		logger.Error().Err(err).Int64("uploaderID", p.UploaderID).Msg("Error creating paper")
		return fmt.Errorf("error creating paper: %w", err)
	}
	return nil
}

// GetPaper retrieves a paper by ID
func (r *ResearchRepository) GetPaper(ctx context.Context, id int64) (*models.ResearchPaper, error) {
	sql, args, err := psql.Select(paperColumns...).From("research_papers").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get paper query: %w", err)
	}
	p, err := scanPaper(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrPaperNotFound
		}
		return nil, fmt.Errorf("error retrieving paper: %w", err)
	}
	return p, nil
}

// SearchPapers matches title, author or original filename case-insensitively
func (r *ResearchRepository) SearchPapers(ctx context.Context, keyword string) ([]models.ResearchPaper, error) {
	pattern := "%" + keyword + "%"
	return r.queryPapers(ctx, psql.Select(paperColumns...).From("research_papers").
		Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"author": pattern},
			squirrel.ILike{"original_filename": pattern},
		}).
		OrderBy("created_at DESC"))
}

// ListPapersByUploader returns a user's uploads newest first
func (r *ResearchRepository) ListPapersByUploader(ctx context.Context, userID int64) ([]models.ResearchPaper, error) {
	return r.queryPapers(ctx, psql.Select(paperColumns...).From("research_papers").
		Where(squirrel.Eq{"uploader_id": userID}).
		OrderBy("created_at DESC"))
}

// RecommendedPapers ranks papers whose field matches an interest first, then the newest
func (r *ResearchRepository) RecommendedPapers(ctx context.Context, interests []string, limit int) ([]models.ResearchPaper, error) {
	patterns := make([]string, 0, len(interests))
	for _, i := range interests {
		if i != "" {
			patterns = append(patterns, "%"+i+"%")
		}
	}

	q := psql.Select(paperColumns...).From("research_papers")
	if len(patterns) > 0 {
		q = q.OrderByClause("(research_field ILIKE ANY(?)) DESC", patterns)
	}
	q = q.OrderBy("created_at DESC").Limit(uint64(limit))
	return r.queryPapers(ctx, q)
}

// CreateCollaboration posts a research topic
func (r *ResearchRepository) CreateCollaboration(ctx context.Context, c *models.ResearchCollaboration) error {
	sql, args, err := psql.Insert("research_collaborations").
		Columns("title", "research_field", "details", "creator_id").
		Values(c.Title, c.ResearchField, c.Details, c.CreatorID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create collaboration query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("error creating collaboration: %w", err)
	}
	return nil
}

func scanCollaboration(row pgx.Row) (*models.ResearchCollaboration, error) {
	c := &models.ResearchCollaboration{}
	err := row.Scan(&c.ID, &c.Title, &c.ResearchField, &c.Details, &c.CreatorID, &c.CreatedAt)
	return c, err
}

// GetCollaboration retrieves a topic with its collaborators
func (r *ResearchRepository) GetCollaboration(ctx context.Context, id int64) (*models.ResearchCollaboration, error) {
	sql, args, err := psql.Select(collaborationColumns...).From("research_collaborations r").
		Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get collaboration query: %w", err)
	}
	c, err := scanCollaboration(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrResearchNotFound
		}
		return nil, fmt.Errorf("error retrieving collaboration: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, u.profile_picture
		FROM research_collaborators rc JOIN users u ON u.id = rc.user_id
		WHERE rc.research_id = $1 ORDER BY u.username`, id)
	if err != nil {
		return nil, fmt.Errorf("error loading collaborators: %w", err)
	}
	if c.Collaborators, err = scanSummaries(rows); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCollaborationsByCreator returns the caller's own topics
func (r *ResearchRepository) ListCollaborationsByCreator(ctx context.Context, creatorID int64) ([]models.ResearchCollaboration, error) {
	sql, args, err := psql.Select(collaborationColumns...).From("research_collaborations r").
		Where(squirrel.Eq{"r.creator_id": creatorID}).
		OrderBy("r.created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list collaborations query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing collaborations: %w", err)
	}
	defer rows.Close()

	out := []models.ResearchCollaboration{}
	for rows.Next() {
		c, err := scanCollaboration(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning collaboration: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ListOtherCollaborations returns topics created by others. A topic can be
// requested when the user is neither a collaborator nor waiting on a request.
func (r *ResearchRepository) ListOtherCollaborations(ctx context.Context, userID int64) ([]dto.CollaborationResponse, error) {
	sql, args, err := psql.Select(append(collaborationColumns, "u.username")...).
		Column(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM research_collaborators rc WHERE rc.research_id = r.id AND rc.user_id = ?) "+
				"AND NOT EXISTS (SELECT 1 FROM collaboration_requests cr WHERE cr.research_id = r.id AND cr.requester_id = ? AND cr.status = 'pending')",
			userID, userID)).
		From("research_collaborations r").
		Join("users u ON u.id = r.creator_id").
		Where(squirrel.NotEq{"r.creator_id": userID}).
		OrderBy("r.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build other collaborations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing other collaborations")
		return nil, fmt.Errorf("error listing collaborations: %w", err)
	}
	defer rows.Close()

	out := []dto.CollaborationResponse{}
	for rows.Next() {
		var c dto.CollaborationResponse
		if err := rows.Scan(&c.ID, &c.Title, &c.ResearchField, &c.Details, &c.CreatorID, &c.CreatedAt,
			&c.CreatorUsername, &c.CanRequestCollaboration); err != nil {
			return nil, fmt.Errorf("error scanning collaboration: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// IsCollaborator reports whether userID already works on the topic
func (r *ResearchRepository) IsCollaborator(ctx context.Context, researchID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM research_collaborators WHERE research_id = $1 AND user_id = $2)`,
		researchID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("error checking collaborator: %w", err)
	}
	return ok, nil
}

// HasPendingRequest reports whether userID is waiting on the topic's creator
func (r *ResearchRepository) HasPendingRequest(ctx context.Context, researchID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM collaboration_requests WHERE research_id = $1 AND requester_id = $2 AND status = 'pending')`,
		researchID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("error checking pending request: %w", err)
	}
	return ok, nil
}

func scanRequest(row pgx.Row) (*models.CollaborationRequest, error) {
	req := &models.CollaborationRequest{}
	err := row.Scan(&req.ID, &req.ResearchID, &req.RequesterID, &req.Message, &req.Status, &req.CreatedAt)
	return req, err
}

// CreateRequest stores a pending collaboration request
func (r *ResearchRepository) CreateRequest(ctx context.Context, req *models.CollaborationRequest) error {
	sql, args, err := psql.Insert("collaboration_requests").
		Columns("research_id", "requester_id", "message", "status").
		Values(req.ResearchID, req.RequesterID, req.Message, models.RequestPending).
		Suffix("RETURNING id, status, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create request query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID, &req.Status, &req.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintPendingRequest) {
			return apperrors.NewBadRequestError("Collaboration request already sent")
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrResearchNotFound
		}
		return fmt.Errorf("error creating collaboration request: %w", err)
	}
	return nil
}

// GetRequest retrieves a request by ID
func (r *ResearchRepository) GetRequest(ctx context.Context, id int64) (*models.CollaborationRequest, error) {
	sql, args, err := psql.Select(requestColumns...).From("collaboration_requests").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get request query: %w", err)
	}
	req, err := scanRequest(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("Collaboration request not found")
		}
		return nil, fmt.Errorf("error retrieving collaboration request: %w", err)
	}
	return req, nil
}

// ListPendingForCreator returns pending requests on topics owned by creatorID
func (r *ResearchRepository) ListPendingForCreator(ctx context.Context, creatorID int64) ([]dto.CollaborationRequestResponse, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cr.id, cr.research_id, r.title, cr.requester_id, u.username, cr.message, cr.status, cr.created_at
		FROM collaboration_requests cr
		JOIN research_collaborations r ON r.id = cr.research_id
		JOIN users u ON u.id = cr.requester_id
		WHERE r.creator_id = $1 AND cr.status = 'pending'
		ORDER BY cr.created_at DESC`, creatorID)
	if err != nil {
		logger.Error().Err(err).Int64("creatorID", creatorID).Msg("Error listing collaboration requests")
		return nil, fmt.Errorf("error listing collaboration requests: %w", err)
	}
	defer rows.Close()

	out := []dto.CollaborationRequestResponse{}
	for rows.Next() {
		var c dto.CollaborationRequestResponse
		if err := rows.Scan(&c.ID, &c.ResearchID, &c.ResearchTitle, &c.RequesterID, &c.RequesterUsername,
			&c.Message, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning collaboration request: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// lockPending loads a request for update and checks that it is still pending
func lockPending(ctx context.Context, tx pgx.Tx, id int64) (*models.CollaborationRequest, error) {
	sql, args, err := psql.Select(requestColumns...).From("collaboration_requests").
		Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock request query: %w", err)
	}
	req, err := scanRequest(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("Collaboration request not found")
		}
		return nil, fmt.Errorf("error locking collaboration request: %w", err)
	}
	if req.Status != models.RequestPending {
		return nil, apperrors.ErrRequestNotPending
	}
	return req, nil
}

func setRequestStatus(ctx context.Context, tx pgx.Tx, req *models.CollaborationRequest, status models.RequestStatus) error {
	if _, err := tx.Exec(ctx, `UPDATE collaboration_requests SET status = $1 WHERE id = $2`, status, req.ID); err != nil {
		return fmt.Errorf("error updating collaboration request: %w", err)
	}
	req.Status = status
	return nil
}

// AcceptRequest adds the requester as a collaborator and closes the request
func (r *ResearchRepository) AcceptRequest(ctx context.Context, id int64) (*models.CollaborationRequest, error) {
	var req *models.CollaborationRequest
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		if req, err = lockPending(ctx, tx, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO research_collaborators (research_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			req.ResearchID, req.RequesterID)
		if err != nil {
			return fmt.Errorf("error adding collaborator: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrAlreadyCollaborator
		}
		return setRequestStatus(ctx, tx, req, models.RequestAccepted)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// RejectRequest closes a pending request
func (r *ResearchRepository) RejectRequest(ctx context.Context, id int64) (*models.CollaborationRequest, error) {
	var req *models.CollaborationRequest
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		if req, err = lockPending(ctx, tx, id); err != nil {
			return err
		}
		return setRequestStatus(ctx, tx, req, models.RequestRejected)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}
