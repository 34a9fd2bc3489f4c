package validate

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Errors is the aggregated set of field messages produced by a failed validation.
type Errors []string

func (e Errors) Error() string {
	return "validation failed: " + strings.Join(e, "; ")
}

// Validator checks request payloads against their `validate` struct tags.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a Validator that reports messages in English using json field names.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	locale := en.New()
	uni := ut.New(locale, locale)
	translator, _ := uni.GetTranslator("en")

	if err := entranslations.RegisterDefaultTranslations(v, translator); err != nil {
		return nil, err
	}

	return &Validator{validate: v, translator: translator}, nil
}

// Struct validates s. A failure is returned as Errors, sorted and de-duplicated.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	seen := make(map[string]struct{}, len(fieldErrs))
	msgs := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fe.Translate(v.translator)
		if _, ok := seen[msg]; ok {
			continue
		}
		seen[msg] = struct{}{}
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)

	return msgs
}
