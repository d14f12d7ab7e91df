package follow

import (
	"context"
	"errors"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/logging"
	"foodgram/internal/metrics"
	"foodgram/pkg/recipe"
	"foodgram/pkg/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	FollowService interface {
		Subscribe(ctx context.Context, authorID, userID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, authorID, userID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, domain.Pagination, error)
	}

	followService struct {
		followRepository FollowRepository
		userRepository   user.UserRepository
		recipeRepository recipe.RecipeRepository
	}
)

func NewFollowService(followRepository FollowRepository, userRepository user.UserRepository, recipeRepository recipe.RecipeRepository) FollowService {
	return &followService{
		followRepository: followRepository,
		userRepository:   userRepository,
		recipeRepository: recipeRepository,
	}
}

func (s *followService) Subscribe(ctx context.Context, authorID, userID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if author.ID.String() == userID {
		return domain.SubscriptionResponse{}, domain.ErrSelfFollow
	}

	follower, err := uuid.Parse(userID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}

	exists, err := s.followRepository.IsFollowing(ctx, userID, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if exists {
		return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
	}

	if err := s.followRepository.CreateFollow(ctx, &entities.Follow{UserID: follower, AuthorID: author.ID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}

	metrics.RecordSocialEdge("follow", "add")
	logging.Debug().Str("user_id", userID).Str("author_id", authorID).Msg("subscribed")

	res, err := s.toSubscriptions(ctx, []*entities.User{author}, recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	return res[0], nil
}

func (s *followService) Unsubscribe(ctx context.Context, authorID, userID string) error {
	if _, err := s.getAuthor(ctx, authorID); err != nil {
		return err
	}

	removed, err := s.followRepository.DeleteFollow(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotSubscribed
	}

	metrics.RecordSocialEdge("follow", "remove")
	return nil
}

func (s *followService) GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, domain.Pagination, error) {
	authors, total, err := s.followRepository.GetFollowedAuthors(ctx, userID, page, limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	res, err := s.toSubscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return res, domain.NewPagination(page, limit, total), nil
}

func (s *followService) getAuthor(ctx context.Context, authorID string) (*entities.User, error) {
	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return author, nil
}

func (s *followService) toSubscriptions(ctx context.Context, authors []*entities.User, recipesLimit int) ([]domain.SubscriptionResponse, error) {
	ids := make([]string, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID.String())
	}

	followed, err := s.userRepository.HasFollowers(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts, err := s.recipeRepository.CountRecipesByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, a := range authors {
		id := a.ID.String()

		recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, id, recipesLimit)
		if err != nil {
			return nil, err
		}
		short := make([]domain.RecipeShortResponse, 0, len(recipes))
		for _, r := range recipes {
			short = append(short, recipe.ToRecipeShortResponse(r))
		}

		res = append(res, domain.SubscriptionResponse{
			UserResponse: user.ToUserResponse(a, followed[id]),
			Recipes:      short,
			RecipesCount: counts[id],
		})
	}
	return res, nil
}
