package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkalvans/cvadvisor/internal/client/models"
)

// CVForm interactively fills a structured CV profile and submits it.
// Required fields are validated locally; nothing is sent until the whole
// form is complete.
func (a *App) CVForm(ctx context.Context) error {
	profile, err := a.inputCVProfile(ctx)
	if err != nil {
		a.printf("Form aborted: %s\n", err.Error())
		return nil
	}

	if err := a.api.CreateCV(ctx, profile); err != nil {
		a.printf("Could not save CV: %s\n", err.Error())
		return nil
	}

	a.println("CV saved.")
	return nil
}

func (a *App) inputCVProfile(ctx context.Context) (*models.CVProfile, error) {
	fullName, err := a.requiredText("Full name")
	if err != nil {
		return nil, err
	}
	email, err := a.requiredText("Email")
	if err != nil {
		return nil, err
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email %q does not look valid", email)
	}
	phone, err := getSimpleText(a.reader, "Phone number (optional)", a.out)
	if err != nil {
		return nil, err
	}
	jobTitle, err := a.requiredText("Desired job title")
	if err != nil {
		return nil, err
	}
	summary, err := GetMultiline(a.reader, "Professional summary", a.out)
	if err != nil {
		return nil, err
	}
	if summary == "" {
		return nil, fmt.Errorf("summary is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	experiences, err := a.inputExperiences()
	if err != nil {
		return nil, err
	}

	return &models.CVProfile{
		FullName:    fullName,
		Email:       email,
		PhoneNumber: phone,
		JobTitle:    jobTitle,
		Summary:     summary,
		Experiences: experiences,
	}, nil
}

// inputExperiences collects zero or more work-history entries. An empty
// position finishes the loop.
func (a *App) inputExperiences() ([]models.Experience, error) {
	var result []models.Experience
	for {
		position, err := getSimpleText(a.reader, "Position (empty to finish)", a.out)
		if err != nil {
			return nil, err
		}
		if position == "" {
			return result, nil
		}
		company, err := a.requiredText("Company")
		if err != nil {
			return nil, err
		}
		years, err := a.requiredText("Years (e.g. 2019-2023)")
		if err != nil {
			return nil, err
		}
		result = append(result, models.Experience{
			Position: position,
			Company:  company,
			Years:    years,
		})
	}
}

func (a *App) requiredText(prompt string) (string, error) {
	value, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(prompt))
	}
	return value, nil
}
