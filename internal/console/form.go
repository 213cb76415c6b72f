// Package console is the terminal front end: an interactive form for the
// inputs the web page collects, and styled output for the status log.
package console

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
	"github.com/rflorenc/databricks-resource-cleaner/internal/platform"
)

// Input holds the values gathered from flags and the prompt.
type Input struct {
	Host       string
	Token      string
	Categories []string
	Options    models.Options
	Confirmed  bool
}

// Request converts the input to a run request. It does not validate.
func (in *Input) Request() (*models.RunRequest, error) {
	sel, err := models.NewSelection(in.Categories)
	if err != nil {
		return nil, err
	}
	return &models.RunRequest{
		Host:       platform.NormalizeHost(in.Host),
		Token:      in.Token,
		Categories: sel,
		Options:    in.Options,
		Confirmed:  in.Confirmed,
	}, nil
}

// Prompt asks for whatever the flags left unset. Nothing is shown when the
// input is already complete.
func Prompt(ctx context.Context, in *Input) error {
	var fields []huh.Field
	if in.Host == "" {
		fields = append(fields, huh.NewInput().
			Title("Workspace URL").
			Placeholder("https://<workspace>.cloud.databricks.com").
			Validate(validateHost).
			Value(&in.Host))
	}
	if in.Token == "" {
		fields = append(fields, huh.NewInput().
			Title("Access token").
			EchoMode(huh.EchoModePassword).
			Validate(required("access token")).
			Value(&in.Token))
	}
	if len(in.Categories) == 0 {
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Resources to delete").
			Options(categoryOptions()...).
			Validate(func(v []string) error {
				if len(v) == 0 {
					return errors.New("select at least one resource type")
				}
				return nil
			}).
			Value(&in.Categories))
	}

	var groups []*huh.Group
	if len(fields) > 0 {
		groups = append(groups, huh.NewGroup(fields...))
	}
	if !in.Confirmed {
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title("I understand this will permanently delete resources").
				Description(models.Warning).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&in.Confirmed),
		))
	}
	if len(groups) == 0 {
		return nil
	}
	return huh.NewForm(groups...).RunWithContext(ctx)
}

func categoryOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(models.ResourceTypes))
	for _, rt := range models.ResourceTypes {
		opts = append(opts, huh.NewOption(rt.Label, string(rt.Name)))
	}
	return opts
}

func validateHost(s string) error {
	if !strings.HasPrefix(strings.TrimSpace(s), "https://") {
		return models.ErrInvalidHost
	}
	return nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(what + " is required")
		}
		return nil
	}
}
