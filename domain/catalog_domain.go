package domain

import (
	"errors"
)

var (
	MessageSuccessGetTags          = "success get tags"
	MessageSuccessGetTag           = "success get tag"
	MessageSuccessCreateTag        = "tag created successfully"
	MessageSuccessGetIngredients   = "success get ingredients"
	MessageSuccessGetIngredient    = "success get ingredient"
	MessageSuccessCreateIngredient = "ingredient created successfully"

	MessageFailedGetTags          = "failed to get tags"
	MessageFailedGetTag           = "failed to get tag"
	MessageFailedCreateTag        = "failed to create tag"
	MessageFailedGetIngredients   = "failed to get ingredients"
	MessageFailedGetIngredient    = "failed to get ingredient"
	MessageFailedCreateIngredient = "failed to create ingredient"

	ErrTagNotFound        = errors.New("tag not found")
	ErrTagExists          = errors.New("a tag with this name, color or slug already exists")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrIngredientExists   = errors.New("an ingredient with this name and measurement unit already exists")
)

type (
	TagResponse struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}

	CreateTagRequest struct {
		Name  string `json:"name" validate:"required,max=200"`
		Color string `json:"color" validate:"required,len=7,hexcolor"`
		Slug  string `json:"slug" validate:"required,max=200,slug"`
	}

	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	CreateIngredientRequest struct {
		Name            string `json:"name" validate:"required,max=200"`
		MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
	}
)
