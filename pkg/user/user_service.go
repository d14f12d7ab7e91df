package user

import (
	"context"
	"errors"
	"strings"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/logging"
	"foodgram/internal/utils"
	"foodgram/internal/utils/mailing"
	"foodgram/pkg/jwt"

	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Logout(ctx context.Context, token string) error
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		GetUserByID(ctx context.Context, id string) (domain.UserResponse, error)
		GetUsers(ctx context.Context, page, limit int) ([]domain.UserResponse, domain.Pagination, error)
		SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		mailer         mailing.Mailer
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, mailer mailing.Mailer) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		mailer:         mailer,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.userRepository.CheckEmailExists(ctx, email)
	if err != nil {
		return domain.RegisterResponse{}, err
	}
	if exists {
		return domain.RegisterResponse{}, domain.ErrEmailTaken
	}

	exists, err = s.userRepository.CheckUsernameExists(ctx, req.Username)
	if err != nil {
		return domain.RegisterResponse{}, err
	}
	if exists {
		return domain.RegisterResponse{}, domain.ErrUsernameTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	user := &entities.User{
		Email:     email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
		Role:      domain.RoleUser,
	}
	if err := s.userRepository.RegisterUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race against a concurrent registration
			return domain.RegisterResponse{}, s.takenField(ctx, email, req.Username)
		}
		return domain.RegisterResponse{}, err
	}

	s.notify(user, domain.MessageWelcomeMailSubject, mailing.WelcomeBody)

	return domain.RegisterResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

// takenField reports which unique field a failed insert collided on.
func (s *userService) takenField(ctx context.Context, email, username string) error {
	if exists, err := s.userRepository.CheckEmailExists(ctx, email); err != nil {
		return err
	} else if exists {
		return domain.ErrEmailTaken
	}
	if exists, err := s.userRepository.CheckUsernameExists(ctx, username); err != nil {
		return err
	} else if exists {
		return domain.ErrUsernameTaken
	}
	return domain.ErrEmailTaken
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResponse{}, err
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{AuthToken: token}, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenNotFound
	}
	return s.jwtService.RevokeToken(ctx, token)
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	return s.GetUserByID(ctx, userID)
}

func (s *userService) GetUserByID(ctx context.Context, id string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}

	followed, err := s.userRepository.HasFollowers(ctx, []string{id})
	if err != nil {
		return domain.UserResponse{}, err
	}

	return ToUserResponse(user, followed[user.ID.String()]), nil
}

func (s *userService) GetUsers(ctx context.Context, page, limit int) ([]domain.UserResponse, domain.Pagination, error) {
	users, total, err := s.userRepository.GetUsers(ctx, page, limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID.String())
	}
	followed, err := s.userRepository.HasFollowers(ctx, ids)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	res := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, ToUserResponse(u, followed[u.ID.String()]))
	}

	return res, domain.NewPagination(page, limit, total), nil
}

func (s *userService) SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if !utils.CheckPassword(user.Password, req.CurrentPassword) {
		return domain.ErrInvalidPassword
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepository.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.notify(user, domain.MessagePasswordChangeSubject, mailing.PasswordChangedBody)
	return nil
}

// notify sends a mail without failing the caller; delivery errors are only logged.
func (s *userService) notify(user *entities.User, subject string, render func(mailing.UserMailData) (string, error)) {
	body, err := render(mailing.UserMailData{
		FirstName: user.FirstName,
		Username:  user.Username,
		AppURL:    utils.GetConfig("APP_URL"),
	})
	if err == nil {
		err = s.mailer.SendMail(user.Email, subject, body)
	}
	if err != nil {
		logging.Warn().Err(err).Str("user_id", user.ID.String()).Str("subject", subject).Msg("failed to send mail")
	}
}

func ToUserResponse(user *entities.User, isSubscribed bool) domain.UserResponse {
	return domain.UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
