// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// FORM VALIDATION
// =============================================================================

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FieldErrors maps a payload field (its JSON name) to the message shown
// next to it. Backend field errors use the same type.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+e[f])
	}
	return strings.Join(msgs, "; ")
}

// fieldMessages holds the Italian form messages keyed by "<field>.<tag>".
var fieldMessages = map[string]string{
	"title.required":        "Il titolo è obbligatorio",
	"title.min":             "Il titolo deve essere di almeno 3 caratteri",
	"title.max":             "Il titolo non può superare i 255 caratteri",
	"description.required":  "La descrizione è obbligatoria",
	"description.min":       "La descrizione deve essere di almeno 10 caratteri",
	"context.required":      "Il contesto è obbligatorio",
	"context.min":           "Il contesto deve essere di almeno 10 caratteri",
	"problem.required":      "Il problema è obbligatorio",
	"problem.min":           "Il problema deve essere di almeno 10 caratteri",
	"solution.required":     "La soluzione è obbligatoria",
	"solution.min":          "La soluzione deve essere di almeno 10 caratteri",
	"consequences.required": "Le conseguenze sono obbligatorie",
	"consequences.min":      "Le conseguenze devono essere di almeno 10 caratteri",
	"strategy.required":     "La strategia è obbligatoria",
	"strategy.strategy":     "Strategia non valida",

	"mvc_component.required": "Il componente MVC è obbligatorio",
	"mvc_component.mvc":      "Componente MVC non valido",

	"email.required":            "Email obbligatoria",
	"email.mailaddr":            "Indirizzo email non valido",
	"password.required":         "Password obbligatoria",
	"password.password":         "La password deve contenere almeno 8 caratteri, una lettera e un numero",
	"username.required":         "Il nome utente è obbligatorio",
	"username.min":              "Il nome utente deve essere di almeno 3 caratteri",
	"username.max":              "Il nome utente non può superare i 50 caratteri",
	"current_password.required": "La password attuale è obbligatoria",
	"new_password.required":     "La nuova password è obbligatoria",
	"new_password.password":     "La password deve contenere almeno 8 caratteri, una lettera e un numero",
	"confirm_password.required": "Conferma la nuova password",
	"confirm_password.eqfield":  "Le password non coincidono",
	"token.required":            "Token mancante",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("strategy", func(fl validator.FieldLevel) bool {
			return Strategy(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("mvc", func(fl validator.FieldLevel) bool {
			return MVCComponent(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("mailaddr", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return IsValidPassword(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks a payload struct and returns FieldErrors, or nil.
func Validate(payload any) error {
	err := validatorInstance().Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := fieldMessages[field+"."+fe.Tag()]
		if !ok {
			msg = "Valore non valido"
		}
		out[field] = msg
	}
	return out
}

// Validate checks the normalized form of in.
func (in PatternInput) Validate() error {
	return Validate(in.Normalized())
}

// IsValidEmail applies the address pattern used by every email form.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword requires at least 8 characters with a letter and a digit.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
