// Package forms validates console input before any request is made.
package forms

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator"

	"github.com/atinyakov/MailerAdmin/internal/client/apierr"
)

var (
	emailPattern    = regexp.MustCompile(`\S+@\S+\.\S+`)
	planNamePattern = regexp.MustCompile(`^[a-z0-9]+$`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// FieldError is one failed field with its display message.
type FieldError struct {
	Field   string
	Message string
}

// Errors lists failed fields in declaration order. A nil Errors means the
// form is valid.
type Errors []FieldError

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// First returns the first message, or "".
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, ", ")
}

// Err converts e into an error carrying the first message, or nil.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apierr.Invalid(e.First())
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("email_loose", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("plan_name", func(fl validator.FieldLevel) bool {
		return planNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("non_negative", func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && n >= 0
	})
	return v
}

// messages maps "field.tag" to display text.
type messages map[string]string

func run(form interface{}, msgs messages) Errors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{{Message: err.Error()}}
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := msgs[fe.Field()+"."+fe.ActualTag()]
		if !ok {
			msg = fe.Field() + " is not valid"
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

var emailMessages = messages{
	"email.required":    "Email is required",
	"email.email_loose": "Email is invalid",
}

var passwordMessages = messages{
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 6 characters",
	"confirmPassword.required": "Please confirm your password",
	"confirmPassword.eqfield":  "Passwords do not match",
}

func merge(sets ...messages) messages {
	out := messages{}
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// Login is the login form.
type Login struct {
	Email    string `json:"email" validate:"required,email_loose"`
	Password string `json:"password" validate:"required"`
}

func (f Login) Validate() Errors { return run(f, merge(emailMessages, passwordMessages)) }

// Register is the account creation form.
type Register struct {
	Username        string `json:"username" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email_loose"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f Register) Validate() Errors {
	return run(f, merge(emailMessages, passwordMessages, messages{
		"username.required": "Username is required",
		"username.min":      "Username must be at least 3 characters",
	}))
}

// ForgotPassword requests reset instructions.
type ForgotPassword struct {
	Email string `json:"email" validate:"required,email_loose"`
}

func (f ForgotPassword) Validate() Errors { return run(f, emailMessages) }

// ResetPassword consumes a reset token.
type ResetPassword struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f ResetPassword) Validate() Errors {
	return run(f, merge(passwordMessages, messages{
		"token.required": "Invalid or missing reset token",
	}))
}

// AdminReset sets another user's password directly.
type AdminReset struct {
	UserID      string `json:"userId" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (f AdminReset) Validate() Errors {
	return run(f, messages{
		"userId.required":      "User is required",
		"newPassword.required": "Password must be at least 6 characters",
		"newPassword.min":      "Password must be at least 6 characters",
	})
}
