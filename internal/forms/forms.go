// Package forms wires gin's validator for HTML forms: field names come from
// `form` tags and failures become per-field messages for templates.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonField is the key for errors that belong to the form as a whole.
const NonField = "__all__"

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	setupOnce  sync.Once
)

// Setup registers custom tags on gin's default validator. Safe to call repeatedly.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		// Blank values are left to the required checks; surrounding spaces are trimmed later.
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			return s == "" || usernameRe.MatchString(s)
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugRe.MatchString(fl.Field().String())
		})
	})
}

type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e Errors) Any() bool { return len(e) > 0 }

// FromBinding converts a binding error into field messages. Errors that are
// not validation failures land under NonField.
func FromBinding(err error) Errors {
	out := Errors{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add(NonField, "The submitted form could not be read.")
		return out
	}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "eqfield":
		return "The two password fields didn't match."
	case "e164":
		return "Enter a phone number in international format, e.g. +15551234567."
	}
	return "Enter a valid value."
}

// ValidUsername checks the characters allowed in usernames.
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

// CheckPassword returns a message describing why the password is too weak,
// or an empty string.
func CheckPassword(password string) string {
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Sprintf("This password is too long. It must contain at most %d bytes.", MaxPasswordBytes)
	}
	if strings.Trim(password, "0123456789") == "" {
		return "This password is entirely numeric."
	}
	return ""
}
