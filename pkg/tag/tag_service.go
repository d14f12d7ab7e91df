package tag

import (
	"context"
	"errors"
	"strings"

	"foodgram/domain"
	"foodgram/entities"

	"gorm.io/gorm"
)

type (
	TagService interface {
		GetTags(ctx context.Context) ([]domain.TagResponse, error)
		GetTagByID(ctx context.Context, id string) (domain.TagResponse, error)
		CreateTag(ctx context.Context, req domain.CreateTagRequest) (domain.TagResponse, error)
	}

	tagService struct {
		tagRepository TagRepository
	}
)

func NewTagService(tagRepository TagRepository) TagService {
	return &tagService{tagRepository: tagRepository}
}

func (s *tagService) GetTags(ctx context.Context) ([]domain.TagResponse, error) {
	tags, err := s.tagRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]domain.TagResponse, 0, len(tags))
	for _, t := range tags {
		res = append(res, ToTagResponse(t))
	}
	return res, nil
}

func (s *tagService) GetTagByID(ctx context.Context, id string) (domain.TagResponse, error) {
	tag, err := s.tagRepository.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TagResponse{}, domain.ErrTagNotFound
		}
		return domain.TagResponse{}, err
	}
	return ToTagResponse(tag), nil
}

func (s *tagService) CreateTag(ctx context.Context, req domain.CreateTagRequest) (domain.TagResponse, error) {
	tag := &entities.Tag{
		Name:  strings.TrimSpace(req.Name),
		Color: strings.ToUpper(req.Color),
		Slug:  req.Slug,
	}

	if err := s.tagRepository.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.TagResponse{}, domain.ErrTagExists
		}
		return domain.TagResponse{}, err
	}
	return ToTagResponse(tag), nil
}

func ToTagResponse(tag *entities.Tag) domain.TagResponse {
	return domain.TagResponse{
		ID:    tag.ID.String(),
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}
