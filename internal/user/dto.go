package user

import (
	"net/mail"

	"github.com/frahmantamala/user-management/internal"
)

// RegisterDTO is the transport shape for registration requests. Attributes
// carries the optional dynamic fields checked against the form-field config.
type RegisterDTO struct {
	Username   string            `json:"username"`
	Email      string            `json:"email"`
	Password   string            `json:"password"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type ConsentDTO struct {
	ConsentLGPD bool `json:"consent_lgpd"`
}

type ResetRequestDTO struct {
	Email string `json:"email"`
}

type ResetConfirmDTO struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate checks the static registration constraints. Dynamic form-field
// requirements are validated separately against the config snapshot.
func (d RegisterDTO) Validate() *internal.AppError {
	var errs []internal.ValidationError

	if len(d.Username) < 3 || len(d.Username) > 50 {
		errs = append(errs, internal.ValidationError{
			Field:   "username",
			Message: "username must be between 3 and 50 characters",
			Code:    string(internal.ErrCodeInvalidUsername),
		})
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		errs = append(errs, internal.ValidationError{
			Field:   "email",
			Message: "email must be a valid address",
			Code:    string(internal.ErrCodeInvalidEmail),
		})
	}
	if len(d.Password) < 8 || len(d.Password) > 128 {
		errs = append(errs, internal.ValidationError{
			Field:   "password",
			Message: "password must be between 8 and 128 characters",
			Code:    string(internal.ErrCodeInvalidPassword),
		})
	}

	if len(errs) > 0 {
		return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: errs})
	}
	return nil
}

func (d ResetRequestDTO) Validate() *internal.AppError {
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return internal.NewValidationFieldError("email", "email must be a valid address", internal.ErrCodeInvalidEmail)
	}
	return nil
}

func (d ResetConfirmDTO) Validate() *internal.AppError {
	if d.Token == "" {
		return internal.NewValidationFieldError("token", "token is required", internal.ErrCodeMissingField)
	}
	if len(d.NewPassword) < 8 || len(d.NewPassword) > 128 {
		return internal.NewValidationFieldError("new_password", "password must be between 8 and 128 characters", internal.ErrCodeInvalidPassword)
	}
	return nil
}
