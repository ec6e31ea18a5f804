package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"smartcampus/portal/internal/campusapi"
)

const (
	msgPasswordMismatch = "Les mots de passe ne correspondent pas"
	msgRegisterFailed   = "Veuillez vérifier votre saisie"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// json tag names in field errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type RegisterForm struct {
	Firstname            string `json:"firstname" validate:"required"`
	Lastname             string `json:"lastname" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required"`
	ClasseID             int    `json:"classe_id" validate:"required,gt=0"`
	FiliereID            int    `json:"filiere_id" validate:"required,gt=0"`
	Telephone            string `json:"telephone"`
}

// FieldErrors maps a json field name to the tag it failed.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	return msgMissingFields
}

type RegisterResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Fields  FieldErrors `json:"fields,omitempty"`

	Kind FailureKind `json:"-"`
	Err  error       `json:"-"`
}

// Register validates the sign-up form and forwards it to the campus API.
func (s *AuthService) Register(ctx context.Context, form RegisterForm) RegisterResult {
	if fields := validateForm(form); fields != nil {
		return RegisterResult{Error: fields.Error(), Fields: fields, Kind: FailureValidation, Err: fields}
	}
	if form.Password != form.PasswordConfirmation {
		return RegisterResult{
			Error:  msgPasswordMismatch,
			Fields: FieldErrors{"passwordConfirmation": "eqfield"},
			Kind:   FailureValidation,
		}
	}

	input := campusapi.RegisterInput{
		Firstname: strings.TrimSpace(form.Firstname),
		Lastname:  strings.TrimSpace(form.Lastname),
		Email:     strings.TrimSpace(form.Email),
		Password:  form.Password,
		ClasseID:  form.ClasseID,
		FiliereID: form.FiliereID,
	}
	if tel := strings.TrimSpace(form.Telephone); tel != "" {
		input.Telephone = &tel
	}

	resp, err := s.api.Register(ctx, input)
	if err != nil {
		s.log.Info().Err(err).Msg("registration failed")
		return RegisterResult{Error: err.Error(), Kind: FailureUpstream, Err: err}
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = resp.Error
		}
		if msg == "" {
			msg = msgRegisterFailed
		}
		return RegisterResult{Error: msg, Kind: FailureRejected, Err: &RejectedError{Message: msg}}
	}
	return RegisterResult{Success: true, Message: resp.Message}
}

func validateForm(form RegisterForm) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
