package models

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used when hashing post passwords.
var PasswordCost = bcrypt.DefaultCost

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	// bcrypt rejects secrets longer than 72 bytes, whatever their rune count.
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// ValidationError carries one message per rejected form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "invalid post: " + strings.Join(msgs, "; ")
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		ve.Fields[fe.Field()] = fieldMessage(fe)
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "maxbytes":
		return fe.Field() + " must be at most " + fe.Param() + " bytes"
	}
	return fe.Field() + " is invalid"
}

// IsNew reports whether the post has not been persisted yet.
func (p *Post) IsNew() bool {
	return p.ID == 0
}

// ValidateForCreate checks every field a new post needs, including its password.
func (p *Post) ValidateForCreate() error {
	if err := validate.Struct(p); err != nil {
		return toValidationError(err)
	}
	return nil
}

// ValidateForUpdate checks the editable fields. The password is not part of an edit.
func (p *Post) ValidateForUpdate() error {
	if err := validate.StructExcept(p, "Password"); err != nil {
		return toValidationError(err)
	}
	return nil
}

// SetPassword replaces the stored hash with a hash of plain and clears the plaintext.
func (p *Post) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return err
	}
	p.PasswordHash = string(hash)
	p.Password = ""
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (p *Post) CheckPassword(plain string) bool {
	if p.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(plain)) == nil
}

// BeforeCreate stamps both timestamps for a first insert.
func (p *Post) BeforeCreate(now time.Time) {
	p.CreatedAt = now
	p.UpdatedAt = now
}

// BeforeUpdate stamps UpdatedAt, never moving it backwards.
func (p *Post) BeforeUpdate(now time.Time) {
	if now.Before(p.UpdatedAt) {
		return
	}
	p.UpdatedAt = now
}
