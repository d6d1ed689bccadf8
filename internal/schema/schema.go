// Package schema validates payloads arriving from the content provider, the remote
// attempt store and the local cache before they reach the reducers.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

var (
	once     sync.Once
	validate *govalidator.Validate
	trans    ut.Translator
)

func engine() *govalidator.Validate {
	once.Do(func() {
		validate = govalidator.New(govalidator.WithRequiredStructEnabled())
		// Use JSON tag name for field names in error messages.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, trans)
	})
	return validate
}

// Struct validates v and wraps any failure in domain.ErrInvalidContent.
func Struct(v any) error {
	if err := engine().Struct(v); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidContent, describe(err))
	}
	return nil
}

// TranslateErrors returns field -> message for a validation error.
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Namespace()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

func describe(err error) string {
	fields := TranslateErrors(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}

// Questions validates a provider question list.
func Questions(questions []domain.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: quiz has no questions", domain.ErrInvalidContent)
	}
	for i := range questions {
		if err := Struct(questions[i]); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// Progress validates a decoded progress record.
func Progress(rec domain.ProgressRecord) error {
	return Struct(rec)
}

// StoredAttempt validates an attempt row returned by the remote store.
func StoredAttempt(a domain.StoredAttempt) error {
	return Struct(a)
}
