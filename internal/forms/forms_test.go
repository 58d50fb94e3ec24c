package forms

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type signup struct {
	Username  string `form:"username" binding:"required,max=10,username"`
	Slug      string `form:"slug" binding:"omitempty,slug"`
	Email     string `form:"email" binding:"omitempty,email"`
	Password1 string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

func TestFromBinding(t *testing.T) {
	Setup()

	err := binding.Validator.ValidateStruct(&signup{
		Username:  "bad name!",
		Slug:      "not a slug",
		Email:     "nope",
		Password1: "short",
		Password2: "other",
	})
	errs := FromBinding(err)

	assert.Contains(t, errs["username"], "valid username")
	assert.Contains(t, errs["slug"], "valid slug")
	assert.Equal(t, "Enter a valid email address.", errs["email"])
	assert.Equal(t, "Ensure this value has at least 8 characters.", errs["password1"])
	assert.Equal(t, "The two password fields didn't match.", errs["password2"])
}

func TestFromBindingValid(t *testing.T) {
	Setup()

	err := binding.Validator.ValidateStruct(&signup{
		Username:  "alice.b",
		Slug:      "travel-2026",
		Password1: "long enough",
		Password2: "long enough",
	})
	assert.NoError(t, err)
	assert.False(t, FromBinding(err).Any())
}

func TestFromBindingOtherError(t *testing.T) {
	errs := FromBinding(assert.AnError)
	assert.Contains(t, errs, NonField)
}

func TestAddKeepsFirst(t *testing.T) {
	errs := Errors{}
	errs.Add("title", "first")
	errs.Add("title", "second")
	assert.Equal(t, "first", errs["title"])
}

func TestCheckPassword(t *testing.T) {
	assert.Contains(t, CheckPassword("short"), "too short")
	assert.Equal(t, "This password is entirely numeric.", CheckPassword("1234567890"))
	assert.Equal(t, "", CheckPassword("a-sound-passphrase"))
	assert.Equal(t, "", CheckPassword(strings.Repeat("a", MaxPasswordBytes)))
	assert.Contains(t, CheckPassword(strings.Repeat("a", MaxPasswordBytes+1)), "too long")
	// 30 runes, 75 bytes.
	assert.Contains(t, CheckPassword(strings.Repeat("ж€", 15)), "too long")
}

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("jane.doe+blog@x"))
	assert.False(t, ValidUsername("jane doe"))
}
