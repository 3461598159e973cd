package services

import (
	"context"
	"io"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/auth"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/filestorage"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/sanitize"
)

const recommendedPapersLimit = 10

// ResearchService handles papers and collaboration workflows
type ResearchService interface {
	UploadPaper(ctx context.Context, userID int64, form *dto.UploadPaperForm, file *multipart.FileHeader) (*models.ResearchPaper, error)
	SearchPapers(ctx context.Context, keyword string) ([]models.ResearchPaper, error)
	OpenPaper(ctx context.Context, paperID int64) (*models.ResearchPaper, io.ReadCloser, error)
	RecommendedPapers(ctx context.Context, userID int64) ([]models.ResearchPaper, error)
	PapersByUser(ctx context.Context, userID int64) ([]models.ResearchPaper, error)

	CreateCollaboration(ctx context.Context, userID int64, req *dto.CreateCollaborationRequest) (*models.ResearchCollaboration, error)
	MyCollaborations(ctx context.Context, userID int64) ([]models.ResearchCollaboration, error)
	OtherCollaborations(ctx context.Context, userID int64) ([]dto.CollaborationResponse, error)
	GetCollaboration(ctx context.Context, viewerID, researchID int64) (*dto.CollaborationResponse, error)

	RequestCollaboration(ctx context.Context, userID, researchID int64, message string) (*models.CollaborationRequest, error)
	PendingRequests(ctx context.Context, userID int64) ([]dto.CollaborationRequestResponse, error)
	AcceptRequest(ctx context.Context, userID, requestID int64) (*models.CollaborationRequest, error)
	RejectRequest(ctx context.Context, userID, requestID int64) (*models.CollaborationRequest, error)
}

type researchServiceImpl struct {
	researchRepo  repositories.IResearchRepository
	userRepo      repositories.IUserRepository
	authz         *auth.AuthorizationService
	notifications NotificationService
	fileStorage   filestorage.FileStorage
	logger        zerolog.Logger
}

// NewResearchService creates a new ResearchService
func NewResearchService(
	researchRepo repositories.IResearchRepository,
	userRepo repositories.IUserRepository,
	authz *auth.AuthorizationService,
	notifications NotificationService,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) ResearchService {
	return &researchServiceImpl{
		researchRepo:  researchRepo,
		userRepo:      userRepo,
		authz:         authz,
		notifications: notifications,
		fileStorage:   fileStorage,
		logger:        logger,
	}
}

func (s *researchServiceImpl) UploadPaper(ctx context.Context, userID int64, form *dto.UploadPaperForm, file *multipart.FileHeader) (*models.ResearchPaper, error) {
	if file == nil {
		return nil, apperrors.NewBadRequestError("A paper file is required")
	}
	if _, err := filestorage.CheckExtension(file.Filename, filestorage.ResearchPaperExtensions); err != nil {
		return nil, err
	}

	paper := &models.ResearchPaper{
		Title:         sanitize.Text(form.Title),
		Author:        sanitize.Text(form.Author),
		ResearchField: sanitize.Text(form.ResearchField),
		UploaderID:    userID,
	}
	if paper.Title == "" || paper.Author == "" || paper.ResearchField == "" {
		return nil, apperrors.NewBadRequestError("Title, author and research field are required")
	}

	stored, err := s.fileStorage.Save(ctx, filestorage.CategoryResearchPaper, file)
	if err != nil {
		return nil, err
	}
	paper.FilePath = stored.Key
	paper.OriginalFilename = stored.OriginalName

	if err := s.researchRepo.CreatePaper(ctx, paper); err != nil {
		_ = s.fileStorage.Delete(ctx, stored.Key)
		return nil, err
	}
	s.logger.Info().Int64("paperID", paper.ID).Int64("uploaderID", userID).Msg("Research paper uploaded")
	return paper, nil
}

// SearchPapers matches title, author or filename; no match is reported as not found
func (s *researchServiceImpl) SearchPapers(ctx context.Context, keyword string) ([]models.ResearchPaper, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.NewBadRequestError("keyword is required")
	}
	papers, err := s.researchRepo.SearchPapers(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrPaperNotFound, "No papers found")
	}
	return papers, nil
}

// OpenPaper returns the paper and a reader over its stored file; the caller closes it
func (s *researchServiceImpl) OpenPaper(ctx context.Context, paperID int64) (*models.ResearchPaper, io.ReadCloser, error) {
	paper, err := s.researchRepo.GetPaper(ctx, paperID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.fileStorage.Open(ctx, paper.FilePath)
	if err != nil {
		s.logger.Error().Err(err).Int64("paperID", paperID).Msg("Stored paper file is missing")
		return nil, nil, apperrors.Wrap(apperrors.ErrPaperNotFound, "Paper file not found")
	}
	return paper, rc, nil
}

// RecommendedPapers ranks papers in the caller's fields of interest first
func (s *researchServiceImpl) RecommendedPapers(ctx context.Context, userID int64) ([]models.ResearchPaper, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.researchRepo.RecommendedPapers(ctx, user.FieldsOfInterest, recommendedPapersLimit)
}

func (s *researchServiceImpl) PapersByUser(ctx context.Context, userID int64) ([]models.ResearchPaper, error) {
	return s.researchRepo.ListPapersByUploader(ctx, userID)
}

func (s *researchServiceImpl) CreateCollaboration(ctx context.Context, userID int64, req *dto.CreateCollaborationRequest) (*models.ResearchCollaboration, error) {
	c := &models.ResearchCollaboration{
		Title:         sanitize.Text(req.Title),
		ResearchField: sanitize.Text(req.ResearchField),
		Details:       sanitize.Text(req.Details),
		CreatorID:     userID,
	}
	if c.Title == "" || c.ResearchField == "" || c.Details == "" {
		return nil, apperrors.NewBadRequestError("Title, research field and details are required")
	}
	if err := s.researchRepo.CreateCollaboration(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *researchServiceImpl) MyCollaborations(ctx context.Context, userID int64) ([]models.ResearchCollaboration, error) {
	return s.researchRepo.ListCollaborationsByCreator(ctx, userID)
}

func (s *researchServiceImpl) OtherCollaborations(ctx context.Context, userID int64) ([]dto.CollaborationResponse, error) {
	return s.researchRepo.ListOtherCollaborations(ctx, userID)
}

// canRequest is true for topics the viewer neither owns, joined nor asked to join
func (s *researchServiceImpl) canRequest(ctx context.Context, c *models.ResearchCollaboration, viewerID int64) (bool, error) {
	if c.CreatorID == viewerID {
		return false, nil
	}
	member, err := s.researchRepo.IsCollaborator(ctx, c.ID, viewerID)
	if err != nil || member {
		return false, err
	}
	pending, err := s.researchRepo.HasPendingRequest(ctx, c.ID, viewerID)
	if err != nil {
		return false, err
	}
	return !pending, nil
}

func (s *researchServiceImpl) GetCollaboration(ctx context.Context, viewerID, researchID int64) (*dto.CollaborationResponse, error) {
	c, err := s.researchRepo.GetCollaboration(ctx, researchID)
	if err != nil {
		return nil, err
	}
	can, err := s.canRequest(ctx, c, viewerID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CollaborationResponse{ResearchCollaboration: *c, CanRequestCollaboration: can}
	if creator, err := s.userRepo.GetByID(ctx, c.CreatorID); err == nil {
		resp.CreatorUsername = creator.Username
	}
	return resp, nil
}

// RequestCollaboration asks the topic creator to accept the caller
func (s *researchServiceImpl) RequestCollaboration(ctx context.Context, userID, researchID int64, message string) (*models.CollaborationRequest, error) {
	c, err := s.researchRepo.GetCollaboration(ctx, researchID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID == userID {
		return nil, apperrors.NewBadRequestError("You cannot request collaboration on your own research")
	}

	member, err := s.researchRepo.IsCollaborator(ctx, researchID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, apperrors.Wrap(apperrors.ErrAlreadyCollaborator, "You are already a collaborator")
	}
	pending, err := s.researchRepo.HasPendingRequest(ctx, researchID, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.NewBadRequestError("Collaboration request already sent")
	}

	req := &models.CollaborationRequest{ResearchID: researchID, RequesterID: userID, Message: sanitize.Text(message)}
	if err := s.researchRepo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("researchID", researchID).Int64("requesterID", userID).Msg("Collaboration requested")
	s.notifications.Notify(ctx, c.CreatorID, userID, models.NotificationCollaborationRequest, nil)
	return req, nil
}

func (s *researchServiceImpl) PendingRequests(ctx context.Context, userID int64) ([]dto.CollaborationRequestResponse, error) {
	return s.researchRepo.ListPendingForCreator(ctx, userID)
}

// creatorRequest loads a request the caller is allowed to answer
func (s *researchServiceImpl) creatorRequest(ctx context.Context, userID, requestID int64) (*models.CollaborationRequest, error) {
	req, err := s.researchRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.ValidateResearchCreator(ctx, req.ResearchID, userID); err != nil {
		return nil, err
	}
	return req, nil
}

// AcceptRequest adds the requester to the topic and notifies them
func (s *researchServiceImpl) AcceptRequest(ctx context.Context, userID, requestID int64) (*models.CollaborationRequest, error) {
	if _, err := s.creatorRequest(ctx, userID, requestID); err != nil {
		return nil, err
	}
	req, err := s.researchRepo.AcceptRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, req.RequesterID, userID, models.NotificationCollaborationAccepted, nil)
	return req, nil
}

func (s *researchServiceImpl) RejectRequest(ctx context.Context, userID, requestID int64) (*models.CollaborationRequest, error) {
	if _, err := s.creatorRequest(ctx, userID, requestID); err != nil {
		return nil, err
	}
	return s.researchRepo.RejectRequest(ctx, requestID)
}
