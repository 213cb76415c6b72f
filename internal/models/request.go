package models

import (
	"errors"
	"strings"
)

var (
	// ErrNotReady means the action button would still be disabled.
	ErrNotReady    = errors.New("workspace URL, token, at least one resource type and confirmation are required")
	ErrInvalidHost = errors.New("workspace URL must start with https://")
)

// InvalidHostMessage is what the page shows when Validate returns ErrInvalidHost.
const InvalidHostMessage = "Please provide a valid workspace URL and token."

// Warning is the static notice shown next to the delete action.
const Warning = "Deletion is irreversible. Ensure you have backups and proper permissions. " +
	"For AI Brick-associated endpoints, delete the AI Brick via the Databricks UI. " +
	"For foundation models, enable the 'Set rate limits to 0' option to disable instead of delete."

// Options are the advanced toggles that change how serving endpoints are handled.
type Options struct {
	DisableFoundationModels bool `json:"disable_foundation_models"`
	DeleteAIBricks          bool `json:"delete_ai_bricks"`
}

// RunRequest is everything the form collects before the delete button is pressed.
type RunRequest struct {
	Host       string    `json:"host"`
	Token      string    `json:"token"`
	Categories Selection `json:"-"`
	Options
	Confirmed bool `json:"confirmed"`
}

// Ready reports whether the delete action is available.
func (r *RunRequest) Ready() bool {
	return r.Host != "" && r.Token != "" && len(r.Categories.Ordered()) > 0 && r.Confirmed
}

// Validate applies the same gate as Ready, then checks the URL scheme.
func (r *RunRequest) Validate() error {
	if !r.Ready() {
		return ErrNotReady
	}
	if !strings.HasPrefix(r.Host, "https://") {
		return ErrInvalidHost
	}
	return nil
}
