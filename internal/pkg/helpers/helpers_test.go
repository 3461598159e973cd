package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(target string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParseLimitOffset(t *testing.T) {
	tests := []struct {
		name   string
		target string
		def    int
		want   Page
	}{
		{"defaults", "/", 20, Page{Limit: 20, Offset: 0}},
		{"explicit", "/?limit=5&offset=10", 20, Page{Limit: 5, Offset: 10}},
		{"clamped limit", "/?limit=500", 20, Page{Limit: MaxLimit, Offset: 0}},
		{"garbage", "/?limit=abc&offset=-3", 20, Page{Limit: 20, Offset: 0}},
		{"bad default", "/", 0, Page{Limit: DefaultLimit, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLimitOffset(testContext(tt.target), tt.def))
		})
	}
}

func TestParseOptionalInt64Query(t *testing.T) {
	assert.Nil(t, ParseOptionalInt64Query(testContext("/"), "user_id"))
	assert.Nil(t, ParseOptionalInt64Query(testContext("/?user_id=x"), "user_id"))

	v := ParseOptionalInt64Query(testContext("/?user_id=42"), "user_id")
	require.NotNil(t, v)
	assert.Equal(t, int64(42), *v)
}

func TestParseIDParam(t *testing.T) {
	c := testContext("/")
	c.Params = gin.Params{{Key: "id", Value: "7"}, {Key: "bad", Value: "0"}, {Key: "text", Value: "seven"}}

	id, ok := ParseIDParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok = ParseIDParam(c, "bad")
	assert.False(t, ok)
	_, ok = ParseIDParam(c, "text")
	assert.False(t, ok)
	_, ok = ParseIDParam(c, "missing")
	assert.False(t, ok)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
}

func TestLocalToUTC(t *testing.T) {
	t.Run("utc by default", func(t *testing.T) {
		got, err := LocalToUTC("2025-03-01", "14:30", "")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC), got)
	})

	t.Run("converts zone", func(t *testing.T) {
		got, err := LocalToUTC("2025-03-01", "14:30:15", "Asia/Dhaka")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 1, 8, 30, 15, 0, time.UTC), got)
	})

	t.Run("bad zone", func(t *testing.T) {
		_, err := LocalToUTC("2025-03-01", "14:30", "Mars/Olympus")
		assert.Error(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := LocalToUTC("01/03/2025", "14:30", "")
		assert.Error(t, err)
	})
}

func TestPointerHelpers(t *testing.T) {
	assert.Nil(t, NilIfEmpty("   "))
	assert.Equal(t, "x", *NilIfEmpty("x"))
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "y", Deref(Ptr("y")))
	assert.Equal(t, 3, *Ptr(3))
}

func TestExtractHashtags(t *testing.T) {
	assert.Equal(t, []string{"test", "multiple"}, ExtractHashtags("This is a #test with #multiple hashtags"))
	assert.Equal(t, []string{"testuniversity"}, ExtractHashtags("#TestUniversity and #testuniversity again"))
	assert.Nil(t, ExtractHashtags("no tags here"))
}

func TestUniversityTag(t *testing.T) {
	assert.Equal(t, "testuniversity", UniversityTag("TestUniversity"))
	assert.Equal(t, "northsouthuniversity", UniversityTag("  North South  University "))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_real\\`, EscapeLike(`100% _real\`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
