package crypto

import (
	"context"

	"github.com/go-playground/validator/v10"
)

type passwordErrKey struct{}

// PasswordErrKey is the context key under which ValidateCtx stores a *error
// bucket. The password rule fills it with ErrPasswordWeak so callers can
// surface the readable message instead of the generic tag failure.
var PasswordErrKey = passwordErrKey{}

func cryptoPasswordRule(ctx context.Context, fl validator.FieldLevel) bool {
	if IsStrong(fl.Field().String()) {
		return true
	}
	if bucket, ok := ctx.Value(PasswordErrKey).(*error); ok && bucket != nil {
		*bucket = ErrPasswordWeak
	}
	return false
}

// RegisterPasswordValidator registers the "password" validation tag with the validator
func RegisterPasswordValidator(v *validator.Validate) error {
	return v.RegisterValidationCtx("password", cryptoPasswordRule)
}
