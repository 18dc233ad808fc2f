// Package forms decodes and validates the account and employee forms posted
// by the browser.
package forms

import (
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/form"
	"github.com/go-playground/validator/v10"

	"github.com/phillip-england/employeems/internal/employee"
	"github.com/phillip-england/employeems/internal/security"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	decoder  = form.NewDecoder()
	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	must(v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return security.CheckPasswordStrength(fl.Field().String()) == nil
	}))
	must(v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return employee.IsDepartment(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Errors maps a form field name to the message shown under it.
type Errors map[string]string

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Get(field string) string { return e[field] }

func (e Errors) Any() bool { return len(e) > 0 }

// messages are keyed "field.tag".
type messages map[string]string

type validatable interface {
	messages() messages
}

// Decode fills dst from the posted values, trimming surrounding whitespace
// from every field except passwords.
func Decode(dst any, values url.Values) error {
	cleaned := make(url.Values, len(values))
	for key, vals := range values {
		trimmed := make([]string, len(vals))
		for i, v := range vals {
			if strings.Contains(strings.ToLower(key), "password") {
				trimmed[i] = v
			} else {
				trimmed[i] = strings.TrimSpace(v)
			}
		}
		cleaned[key] = trimmed
	}
	if err := decoder.Decode(dst, cleaned); err != nil {
		return errors.Wrap(err, "decode form")
	}
	return nil
}

// Validate runs the struct rules and returns field messages, or nil.
func Validate(v validatable, fields ...string) Errors {
	var err error
	if len(fields) > 0 {
		err = validate.StructPartial(v, fields...)
	} else {
		err = validate.Struct(v)
	}
	return collect(v.messages(), err)
}

func collect(msgs messages, err error) Errors {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{"_": err.Error()}
	}
	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		if msg, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
			out[fe.Field()] = msg
			continue
		}
		if fe.Tag() == "required" {
			out[fe.Field()] = "This field is required"
		} else {
			out[fe.Field()] = "Invalid value"
		}
	}
	return out
}
