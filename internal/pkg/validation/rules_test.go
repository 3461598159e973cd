package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsernameRule(t *testing.T) {
	v := Validator()
	for _, ok := range []string{"jdoe", "j.doe-42", "under_score"} {
		assert.NoError(t, v.Var(ok, "username"), ok)
	}
	for _, bad := range []string{"jd", "has space", "emoji😀", "this_username_is_way_too_long_for_us"} {
		assert.Error(t, v.Var(bad, "username"), bad)
	}
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("jdoe@uni.edu"))
	assert.False(t, IsEmail("jdoe"))
	assert.False(t, IsEmail(""))
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://arxiv.org/abs/1234"))
	assert.True(t, IsHTTPURL(" http://example.com "))
	assert.False(t, IsHTTPURL("ftp://example.com/file"))
	assert.False(t, IsHTTPURL("example.com"))
	assert.False(t, IsHTTPURL("javascript:alert(1)"))
}
