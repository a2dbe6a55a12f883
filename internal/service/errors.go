package service

import (
	"fmt"

	"go_course_certify/internal/model"
)

func internalError(op string, err error) error {
	return model.NewAppError(
		"INTERNAL_ERROR",
		"An internal error occurred.",
		"",
		fmt.Errorf("%s: %w: %v", op, model.ErrInternalServer, err),
	)
}

func notFoundError(code, message, field string) error {
	return model.NewAppError(code, message, field, model.ErrNotFound)
}

func invalidInputError(code, message, field string) error {
	return model.NewAppError(code, message, field, model.ErrInvalidInput)
}
