package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

// likeTable answers the statements toggleLike issues. The counter update only
// clamps when the statement itself does.
type likeTable struct {
	counts map[int64]int
	likes  map[[2]int64]bool
}

func newLikeTable() *likeTable {
	return &likeTable{counts: map[int64]int{}, likes: map[[2]int64]bool{}}
}

type scriptedRow struct {
	val int
	err error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.val
	return nil
}

func (f *likeTable) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	id := args[len(args)-1].(int64)
	switch {
	case strings.HasPrefix(sql, "SELECT like_count"):
		c, ok := f.counts[id]
		if !ok {
			return scriptedRow{err: pgx.ErrNoRows}
		}
		return scriptedRow{val: c}
	case strings.HasPrefix(sql, "UPDATE"):
		next := f.counts[id] + args[0].(int)
		if strings.Contains(sql, "GREATEST(like_count + $1, 0)") && next < 0 {
			next = 0
		}
		f.counts[id] = next
		return scriptedRow{val: next}
	}
	return scriptedRow{err: fmt.Errorf("unexpected query %q", sql)}
}

func (f *likeTable) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	key := [2]int64{args[0].(int64), args[1].(int64)}
	switch {
	case strings.HasPrefix(sql, "DELETE FROM likes"):
		if f.likes[key] {
			delete(f.likes, key)
			return pgconn.NewCommandTag("DELETE 1"), nil
		}
		return pgconn.NewCommandTag("DELETE 0"), nil
	case strings.HasPrefix(sql, "INSERT INTO likes"):
		f.likes[key] = true
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec %q", sql)
}

func (f *likeTable) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func TestToggleLike_LikeThenUnlikeRestoresCount(t *testing.T) {
	ctx := context.Background()
	table := newLikeTable()
	table.counts[7] = 3

	liked, count, err := toggleLike(ctx, table, postTarget, 1, 7)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 4, count)
	assert.True(t, table.likes[[2]int64{1, 7}])

	liked, count, err = toggleLike(ctx, table, postTarget, 1, 7)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 3, count)
	assert.Empty(t, table.likes)
}

func TestToggleLike_CounterStaysAtZero(t *testing.T) {
	ctx := context.Background()
	table := newLikeTable()
	// a like row whose increment was lost
	table.counts[9] = 0
	table.likes[[2]int64{2, 9}] = true

	liked, count, err := toggleLike(ctx, table, commentTarget, 2, 9)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, table.counts[9])
}

func TestToggleLike_MissingTarget(t *testing.T) {
	_, _, err := toggleLike(context.Background(), newLikeTable(), postTarget, 1, 404)
	assert.True(t, errors.Is(err, apperrors.ErrPostNotFound))

	_, _, err = toggleLike(context.Background(), newLikeTable(), commentTarget, 1, 404)
	assert.True(t, errors.Is(err, apperrors.ErrCommentNotFound))
}
