package dto

import "sjt-studio/internal/domain"

// ProfileResponse describes an input profile
type ProfileResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`
	Attempts    int      `json:"attempts"`
	SplitLines  bool     `json:"split_lines"`
	Default     bool     `json:"default"`
}

// ProfileListResponse is the body of GET /api/profiles
type ProfileListResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache,omitempty"`
}

// NewProfileResponse converts a domain profile.
func NewProfileResponse(p domain.Profile, defaultName string) ProfileResponse {
	return ProfileResponse{
		Name:        p.Name,
		Description: p.Description,
		Columns:     p.Schema.RequiredColumns(),
		Attempts:    p.Attempts,
		SplitLines:  p.Schema.SplitLines,
		Default:     p.Name == defaultName,
	}
}
