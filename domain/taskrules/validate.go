package taskrules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"task-tracker/domain/apperror"
	"task-tracker/domain/models"
)

// ValidateTitle checks an already-trimmed title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperror.Validation("Title cannot be empty")
	}
	if utf8.RuneCountInString(title) > models.TitleMaxLength {
		return apperror.Validation(fmt.Sprintf("Title must not exceed %d characters", models.TitleMaxLength))
	}
	return nil
}

func ValidateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > models.DescriptionMaxLength {
		return apperror.Validation(fmt.Sprintf("Description must not exceed %d characters", models.DescriptionMaxLength))
	}
	return nil
}

// Validate checks the values a patch carries. Handlers validate first; this is
// the last gate before a store sees the data.
func (p Patch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if err := ValidateDescription(p.Description); err != nil {
		return err
	}
	if p.Status != nil && !p.Status.IsValid() {
		return apperror.Validation("Status must be one of: TODO, IN_PROGRESS, DONE")
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return apperror.Validation("Priority must be one of: LOW, MEDIUM, HIGH")
	}
	return nil
}
