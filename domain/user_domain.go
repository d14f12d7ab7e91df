package domain

import (
	"errors"
)

var (
	MessageSuccessRegister       = "user registered successfully"
	MessageSuccessLogin          = "login success"
	MessageSuccessLogout         = "logout success"
	MessageSuccessGetUser        = "success get user"
	MessageSuccessGetUsers       = "success get users"
	MessageSuccessSetPassword    = "password changed successfully"
	MessageFailedRegister        = "failed to register user"
	MessageFailedLogin           = "failed to login"
	MessageFailedLogout          = "failed to logout"
	MessageFailedGetUser         = "failed to get user"
	MessageFailedGetUsers        = "failed to get users"
	MessageFailedSetPassword     = "failed to change password"
	MessageWelcomeMailSubject    = "Welcome to Foodgram"
	MessagePasswordChangeSubject = "Your Foodgram password was changed"

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("a user with that email already exists")
	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrInvalidPassword    = errors.New("invalid password")
)

type (
	RegisterRequest struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,max=150,username"`
		FirstName string `json:"first_name" validate:"required,max=150"`
		LastName  string `json:"last_name" validate:"required,max=150"`
		Password  string `json:"password" validate:"required,min=8,max=128"`
	}

	RegisterResponse struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		AuthToken string `json:"auth_token"`
	}

	SetPasswordRequest struct {
		NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
		CurrentPassword string `json:"current_password" validate:"required"`
	}

	// UserResponse is the public shape of a user. IsSubscribed reports
	// whether the user has at least one follower.
	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		IsSubscribed bool   `json:"is_subscribed"`
	}
)
