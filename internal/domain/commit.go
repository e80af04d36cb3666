package domain

import "time"

// Commit is a single commit as surfaced by the dashboard.
// Its identity is (SHA, Repository.FullName): the same SHA can appear once
// per repository when forks share history, but never twice for the same
// repository within one aggregation result.
type Commit struct {
	SHA             string           `json:"sha"`
	Message         string           `json:"message"`
	AuthorName      string           `json:"author_name"`
	AuthorDate      time.Time        `json:"author_date"`
	AuthorLogin     string           `json:"author_login,omitempty"`
	AuthorAvatarURL string           `json:"author_avatar_url,omitempty"`
	HTMLURL         string           `json:"html_url"`
	Repository      SourceRepository `json:"repository"`
}
