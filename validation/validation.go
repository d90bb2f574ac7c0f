// Package validation checks submitted registration forms.
package validation

import (
	"regexp"

	"foodshare/models"

	"github.com/go-playground/validator/v10"
)

// Fields is a submitted form flattened to field name -> value
type Fields map[string]string

// Violation is one failed rule
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// rule checks Field with a validator tag. When Compare is set the field is
// validated against that other field's value instead of on its own.
type rule struct {
	Field   string
	Tag     string
	Compare string
	Message string
	Roles   []models.Role
}

// textPattern is the allowed alphabet for names, addresses, cities and
// transportation modes.
var textPattern = regexp.MustCompile(`^[A-Za-z0-9\-_\s]+$`)

// maxPasswordBytes is the longest input bcrypt will hash
const maxPasswordBytes = 72

// rules are evaluated in order and every failure is reported
var rules = []rule{
	{Field: "name", Tag: "formtext", Message: "Enter a valid name!"},
	{Field: "password", Tag: "min=6,max=20", Message: "Password: 6 to 20 characters required"},
	{Field: "password", Tag: "hashable", Message: "Password: too long, use fewer special characters"},
	{Field: "password", Tag: "eqcsfield", Compare: "password_repeat", Message: "Passwords do not match"},
	{Field: "email", Tag: "email", Message: "Enter a valid email!"},
	{Field: "phone", Tag: "required", Message: "Enter a valid phone number"},
	{Field: "address", Tag: "formtext", Message: "Enter a valid address"},
	{Field: "city", Tag: "formtext", Message: "Enter a valid city"},
	{Field: "transportation", Tag: "formtext", Message: "Enter a valid form of transportation", Roles: []models.Role{models.RoleDeliverer}},
	{Field: "credit", Tag: "number", Message: "Enter a valid credit card number"},
}

// Validator runs the registration rules
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	if err := v.RegisterValidation("formtext", func(fl validator.FieldLevel) bool {
		return textPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("hashable", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	}); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

// Validate returns every violation of fields for the given role, or nil
func (val *Validator) Validate(role models.Role, fields Fields) []Violation {
	var violations []Violation
	for _, r := range rules {
		if !r.appliesTo(role) {
			continue
		}
		var err error
		if r.Compare != "" {
			err = val.v.VarWithValue(fields[r.Field], fields[r.Compare], r.Tag)
		} else {
			err = val.v.Var(fields[r.Field], r.Tag)
		}
		if err != nil {
			violations = append(violations, Violation{Field: r.Field, Message: r.Message})
		}
	}
	return violations
}

func (r rule) appliesTo(role models.Role) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}
