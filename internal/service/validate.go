package service

import (
	"errors"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var rules = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("complexpw", complexPassword); err != nil {
		panic(err)
	}
	return v
}

// complexPassword requires a lowercase letter, an uppercase letter, a digit
// and a punctuation or symbol character.
func complexPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// checkStruct runs the struct tags of in and turns the first failure into a
// ValidationError using reason.
func checkStruct(in any, reason func(validator.ValidationErrors) string) error {
	err := rules.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return invalid(reason(verrs))
}
