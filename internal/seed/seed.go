package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	appModels "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	appRepos "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/auth"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@noobsquad.local"
	// Fake accounts share one password so they can be used to log in locally
	fakePassword = "Password123"
)

var researchFields = []string{
	"Machine Learning", "Computer Vision", "Distributed Systems", "Bioinformatics",
	"Quantum Computing", "Human Computer Interaction", "Robotics", "Cryptography",
}

// CreateDefaultData creates a verified admin account if it does not exist yet
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, adminPassword string, lgr zerolog.Logger) error {
	_, err := repos.UserRepository.GetByEmail(ctx, adminEmail)
	if err == nil {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if adminPassword == "" {
		lgr.Warn().Msg("No admin password configured, skipping admin creation")
		return nil
	}

	hashed, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	admin := &appModels.User{
		Username:   adminUsername,
		Email:      adminEmail,
		Password:   hashed,
		IsVerified: true,
	}
	if err := repos.UserRepository.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
	return nil
}

// Seeder fills a development database with fake data
type Seeder struct {
	repos  *appRepos.Repositories
	faker  *gofakeit.Faker
	logger zerolog.Logger
}

// NewSeeder creates a seeder; a zero seed uses the current time
func NewSeeder(repos *appRepos.Repositories, seed int64, lgr zerolog.Logger) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		repos:  repos,
		faker:  gofakeit.New(uint64(seed)),
		logger: lgr,
	}
}

// Result counts what a seeding run created
type Result struct {
	Users          int
	Posts          int
	Connections    int
	Collaborations int
}

// Fake creates n verified users, each with a few posts, connections and research topics
func (s *Seeder) Fake(ctx context.Context, n int) (*Result, error) {
	res := &Result{}
	if n <= 0 {
		return res, nil
	}

	hashed, err := auth.HashPassword(fakePassword)
	if err != nil {
		return nil, err
	}

	users := make([]*appModels.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.fakeUser(ctx, hashed)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrEmailAlreadyExists, apperrors.ErrUsernameAlreadyExists) {
				continue
			}
			return res, err
		}
		users = append(users, user)
	}
	res.Users = len(users)
	s.logger.Info().Int("count", res.Users).Msg("Fake users created")

	for _, u := range users {
		posts := 1 + s.faker.IntN(3)
		for j := 0; j < posts; j++ {
			if err := s.fakePost(ctx, u.ID); err != nil {
				return res, err
			}
			res.Posts++
		}

		if s.faker.Bool() {
			if err := s.fakeCollaboration(ctx, u.ID); err != nil {
				return res, err
			}
			res.Collaborations++
		}
	}

	res.Connections, err = s.fakeConnections(ctx, users)
	if err != nil {
		return res, err
	}

	s.logger.Info().
		Int("posts", res.Posts).
		Int("connections", res.Connections).
		Int("collaborations", res.Collaborations).
		Msg("Fake content created")
	return res, nil
}

func (s *Seeder) fakeUser(ctx context.Context, hashedPassword string) (*appModels.User, error) {
	username := strings.ToLower(s.faker.Username())
	username = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, username)
	if len(username) < 3 {
		username += fmt.Sprintf("user%d", s.faker.Number(100, 999))
	}

	user := &appModels.User{
		Username:         username,
		Email:            username + "@" + s.faker.DomainName(),
		Password:         hashedPassword,
		IsVerified:       true,
		FieldsOfInterest: s.pickFields(2),
	}
	if err := s.repos.UserRepository.Create(ctx, user); err != nil {
		return nil, err
	}

	if _, err := s.repos.UserRepository.UpdateProfile(ctx, user.ID,
		s.faker.Company()+" University", s.faker.JobDescriptor(), user.FieldsOfInterest); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Seeder) fakePost(ctx context.Context, userID int64) error {
	post := &appModels.Post{
		UserID:   userID,
		PostType: appModels.PostTypeText,
		Content:  helpers.Ptr(s.faker.HipsterSentence()),
	}

	// Roughly one post in five is an upcoming event
	if s.faker.IntN(5) == 0 {
		post.PostType = appModels.PostTypeEvent
		post.Event = &appModels.Event{
			UserID:        userID,
			Title:         s.faker.HipsterSentence(),
			Description:   helpers.Ptr(s.faker.HipsterSentence() + " " + s.faker.HipsterSentence()),
			EventDatetime: time.Now().UTC().Add(time.Duration(1+s.faker.IntN(60)) * 24 * time.Hour).Truncate(time.Hour),
			Location:      helpers.Ptr(s.faker.City()),
		}
	}

	return s.repos.PostRepository.Create(ctx, post)
}

func (s *Seeder) fakeCollaboration(ctx context.Context, userID int64) error {
	return s.repos.ResearchRepository.CreateCollaboration(ctx, &appModels.ResearchCollaboration{
		Title:         s.faker.HipsterSentence(),
		ResearchField: s.pickFields(1)[0],
		Details:       s.faker.HipsterSentence() + " " + s.faker.HipsterSentence(),
		CreatorID:     userID,
	})
}

// fakeConnections links every user to a couple of random others
func (s *Seeder) fakeConnections(ctx context.Context, users []*appModels.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}

	created := 0
	for _, u := range users {
		for k := 0; k < 2; k++ {
			other := users[s.faker.IntN(len(users))]
			if other.ID == u.ID {
				continue
			}
			conn, err := s.repos.ConnectionRepository.Create(ctx, u.ID, other.ID)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrConnectionExists) {
					continue
				}
				return created, err
			}
			if s.faker.Bool() {
				if _, err := s.repos.ConnectionRepository.UpdateStatus(ctx, conn.ID, appModels.ConnectionAccepted); err != nil {
					return created, err
				}
			}
			created++
		}
	}
	return created, nil
}

func (s *Seeder) pickFields(n int) []string {
	fields := make([]string, len(researchFields))
	copy(fields, researchFields)
	s.faker.ShuffleStrings(fields)
	return fields[:n]
}
