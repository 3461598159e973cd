package validation

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Usernames are 3-30 characters of letters, digits, dot, dash or underscore
	UsernamePattern = `^[A-Za-z0-9._\-]{3,30}$`

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Username *regexp.Regexp
}{
	Username: regexp.MustCompile(UsernamePattern),
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the custom rules registered
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		_ = instance.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return CompiledPatterns.Username.MatchString(fl.Field().String())
		})
	})
	return instance
}

// IsEmail reports whether s is a syntactically valid email address
func IsEmail(s string) bool {
	return Validator().Var(s, "required,email") == nil
}

// IsHTTPURL reports whether s is an absolute http or https URL with a host
func IsHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if Validator().Var(s, "required,url") != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
