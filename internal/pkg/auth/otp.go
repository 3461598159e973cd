package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTPConfig controls one-time codes sent by email
type OTPConfig struct {
	Issuer string
	TTL    time.Duration
	Digits int
}

// OTPGenerator issues short numeric codes. Each code is derived from a fresh
// random TOTP secret, so codes are unrelated across users and issues.
type OTPGenerator struct {
	config OTPConfig
	now    func() time.Time
}

// NewOTPGenerator creates an OTPGenerator with sane defaults
func NewOTPGenerator(config OTPConfig) *OTPGenerator {
	if config.TTL <= 0 {
		config.TTL = 10 * time.Minute
	}
	if config.Digits != 8 {
		config.Digits = 6
	}
	if config.Issuer == "" {
		config.Issuer = "noobsquad"
	}
	return &OTPGenerator{config: config, now: time.Now}
}

// Generate returns a new code and its expiry for the given account name
func (g *OTPGenerator) Generate(account string) (string, time.Time, error) {
	digits := otp.DigitsSix
	if g.config.Digits == 8 {
		digits = otp.DigitsEight
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.config.Issuer,
		AccountName: account,
		Period:      uint(g.config.TTL.Seconds()),
		Digits:      digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate otp secret: %w", err)
	}

	now := g.now()
	code, err := totp.GenerateCodeCustom(key.Secret(), now, totp.ValidateOpts{
		Period:    uint(g.config.TTL.Seconds()),
		Digits:    digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate otp code: %w", err)
	}

	return code, now.Add(g.config.TTL).UTC(), nil
}

// TTL returns how long issued codes stay valid
func (g *OTPGenerator) TTL() time.Duration {
	return g.config.TTL
}

// OTPMatches compares a stored code with a submitted one in constant time
func OTPMatches(stored, submitted string) bool {
	if stored == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
