package domain

import (
	"errors"
)

const (
	RoleAnonymous = "anonymous"
	RoleUser      = "user"
	RoleAdmin     = "admin"

	DefaultPage  = 1
	DefaultLimit = 6
	MaxLimit     = 100
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedValidation     = "request validation failed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageUnauthenticated      = "authentication credentials were not provided"
	MessageForbidden            = "you do not have permission to perform this action"
	MessageMethodNotAllowed     = "method not allowed"

	ErrParseUUID       = errors.New("failed to parse UUID")
	ErrUserNotAllowed  = errors.New("user not allowed")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrTokenNotFound   = errors.New("failed to token not found")
	ErrTokenInvalid    = errors.New("token is invalid")
	ErrTokenExpired    = errors.New("token is expired")
	ErrTokenRevoked    = errors.New("token has been revoked")
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}
}
