package ingredient

import (
	"context"
	"errors"
	"strings"

	"foodgram/domain"
	"foodgram/entities"

	"gorm.io/gorm"
)

type (
	IngredientService interface {
		SearchIngredients(ctx context.Context, prefix string) ([]domain.IngredientResponse, error)
		GetIngredientByID(ctx context.Context, id string) (domain.IngredientResponse, error)
		CreateIngredient(ctx context.Context, req domain.CreateIngredientRequest) (domain.IngredientResponse, error)
	}

	ingredientService struct {
		ingredientRepository IngredientRepository
	}
)

func NewIngredientService(ingredientRepository IngredientRepository) IngredientService {
	return &ingredientService{ingredientRepository: ingredientRepository}
}

func (s *ingredientService) SearchIngredients(ctx context.Context, prefix string) ([]domain.IngredientResponse, error) {
	ingredients, err := s.ingredientRepository.SearchIngredients(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, err
	}

	res := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		res = append(res, ToIngredientResponse(i))
	}
	return res, nil
}

func (s *ingredientService) GetIngredientByID(ctx context.Context, id string) (domain.IngredientResponse, error) {
	ingredient, err := s.ingredientRepository.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.IngredientResponse{}, domain.ErrIngredientNotFound
		}
		return domain.IngredientResponse{}, err
	}
	return ToIngredientResponse(ingredient), nil
}

func (s *ingredientService) CreateIngredient(ctx context.Context, req domain.CreateIngredientRequest) (domain.IngredientResponse, error) {
	ingredient := &entities.Ingredient{
		Name:            strings.TrimSpace(req.Name),
		MeasurementUnit: strings.TrimSpace(req.MeasurementUnit),
	}

	if err := s.ingredientRepository.CreateIngredient(ctx, ingredient); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.IngredientResponse{}, domain.ErrIngredientExists
		}
		return domain.IngredientResponse{}, err
	}
	return ToIngredientResponse(ingredient), nil
}

func ToIngredientResponse(ingredient *entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:              ingredient.ID.String(),
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}
