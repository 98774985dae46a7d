package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

type SignupInput struct {
	FirstName string `json:"firstName" validate:"required,min=3,max=30"`
	LastName  string `json:"lastName" validate:"required,min=3,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=26,complexpw"`
}

func (in *SignupInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func signupReason(verrs validator.ValidationErrors) string {
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "All fields are required"
		}
	}
	fe := verrs[0]
	switch fe.StructField() {
	case "FirstName":
		return "First name must be between 3 and 30 characters"
	case "LastName":
		return "Last name must be between 3 and 30 characters"
	case "Email":
		return "Invalid email address"
	}
	if fe.Tag() == "complexpw" {
		return "Password must contain an uppercase letter, a lowercase letter, a number and a special character"
	}
	return "Password must be between 8 and 26 characters"
}

func (in SignupInput) Validate() error {
	return checkStruct(in, signupReason)
}
