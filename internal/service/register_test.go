package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcampus/portal/internal/campusapi"
)

func validForm() RegisterForm {
	return RegisterForm{
		Firstname:            " Ada ",
		Lastname:             "Lovelace",
		Email:                "ada@estiam.com",
		Password:             "s3cret!",
		PasswordConfirmation: "s3cret!",
		ClasseID:             1,
		FiliereID:            2,
	}
}

func TestRegister_ForwardsForm(t *testing.T) {
	api := &fakeCampus{register: campusapi.RegisterResponse{Success: true, Message: "Compte créé"}}

	result := newAuth(api, nil).Register(context.Background(), validForm())

	require.True(t, result.Success)
	assert.Equal(t, "Compte créé", result.Message)
	assert.Equal(t, "Ada", api.lastInput.Firstname)
	assert.Equal(t, 1, api.lastInput.ClasseID)
	assert.Nil(t, api.lastInput.Telephone)
}

func TestRegister_KeepsTelephone(t *testing.T) {
	api := &fakeCampus{register: campusapi.RegisterResponse{Success: true}}
	form := validForm()
	form.Telephone = "0600000000"

	newAuth(api, nil).Register(context.Background(), form)

	require.NotNil(t, api.lastInput.Telephone)
	assert.Equal(t, "0600000000", *api.lastInput.Telephone)
}

func TestRegister_Validation(t *testing.T) {
	api := &fakeCampus{}
	form := validForm()
	form.Email = "not-an-email"
	form.ClasseID = 0

	result := newAuth(api, nil).Register(context.Background(), form)

	assert.False(t, result.Success)
	assert.Equal(t, FailureValidation, result.Kind)
	assert.Equal(t, "email", result.Fields["email"])
	assert.Equal(t, "required", result.Fields["classe_id"])
	assert.Zero(t, api.calls)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	api := &fakeCampus{}
	form := validForm()
	form.PasswordConfirmation = "other"

	result := newAuth(api, nil).Register(context.Background(), form)

	assert.Equal(t, "Les mots de passe ne correspondent pas", result.Error)
	assert.Contains(t, result.Fields, "passwordConfirmation")
	assert.Zero(t, api.calls)
}

func TestRegister_Rejected(t *testing.T) {
	api := &fakeCampus{register: campusapi.RegisterResponse{Success: false, Message: "Email déjà utilisé"}}

	result := newAuth(api, nil).Register(context.Background(), validForm())

	assert.False(t, result.Success)
	assert.Equal(t, "Email déjà utilisé", result.Error)
	assert.Equal(t, FailureRejected, result.Kind)
}
