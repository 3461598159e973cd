package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/validation"
)

// RegisterValidators adds the custom binding tags to gin's validator
func RegisterValidators() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return engine.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return validation.CompiledPatterns.Username.MatchString(fl.Field().String())
	})
}
