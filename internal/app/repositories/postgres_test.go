package repositories

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/migrations"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
)

// testPool connects to TEST_DATABASE_URL and applies the migrations.
// Tests using it are skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.NewMigrator(pool, zerolog.Nop()).Migrate(ctx, migrations.Files()))
	return pool
}

func uniqueName(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func createTestUser(t *testing.T, users *UserRepository) *models.User {
	t.Helper()
	name := uniqueName("u")
	u := &models.User{Username: name, Email: name + "@uni.edu", IsVerified: true}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func createTestPost(t *testing.T, posts *PostRepository, userID int64, content string, tags []string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, PostType: models.PostTypeText, Content: &content, Hashtags: tags}
	require.NoError(t, posts.Create(context.Background(), p))
	return p
}

func TestLikeRepository_TogglePostgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repos := NewRepositories(pool)

	author := createTestUser(t, repos.UserRepository)
	fan := createTestUser(t, repos.UserRepository)
	post := createTestPost(t, repos.PostRepository, author.ID, "hello", nil)

	liked, count, err := repos.LikeRepository.TogglePostLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = repos.LikeRepository.TogglePostLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	// a like row without a matching increment must not push the counter below zero
	_, err = pool.Exec(ctx, "INSERT INTO likes (user_id, post_id) VALUES ($1, $2)", fan.ID, post.ID)
	require.NoError(t, err)
	liked, count, err = repos.LikeRepository.TogglePostLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	stored, err := repos.PostRepository.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LikeCount)
}

func TestUniversityRepository_Postgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repos := NewRepositories(pool)

	university := uniqueName("Uni")
	tag := strings.ToLower(university)

	a := createTestUser(t, repos.UserRepository)
	b := createTestUser(t, repos.UserRepository)
	outsider := createTestUser(t, repos.UserRepository)
	_, err := repos.UserRepository.UpdateProfile(ctx, a.ID, university, "Computer Science", []string{"ml"})
	require.NoError(t, err)
	_, err = repos.UserRepository.UpdateProfile(ctx, b.ID, strings.ToUpper(university), "Mathematics", []string{"algebra"})
	require.NoError(t, err)

	tagged := createTestPost(t, repos.PostRepository, a.ID, "Great day at #"+university, []string{tag, "unrelated" + tag})
	createTestPost(t, repos.PostRepository, b.ID, "no tag", nil)
	createTestPost(t, repos.PostRepository, outsider.ID, "visiting #"+tag, []string{tag})

	members, err := repos.UniversityRepository.ListMembers(ctx, strings.ToLower(university))
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, a.Username, members[0].Username)
	assert.Equal(t, "Computer Science", *members[0].Department)

	ids, err := repos.UniversityRepository.PostIDsByTag(ctx, []int64{a.ID, b.ID}, tag)
	require.NoError(t, err)
	assert.Equal(t, []int64{tagged.ID}, ids)

	// both posts naming the university count, the unknown tag is ignored
	h, err := repos.UniversityRepository.GetHashtag(ctx, tag)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 2, h.UsageCount)

	h, err = repos.UniversityRepository.GetHashtag(ctx, "unrelated"+tag)
	require.NoError(t, err)
	assert.Nil(t, h)

	none, err := repos.UniversityRepository.ListMembers(ctx, uniqueName("Nowhere"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
