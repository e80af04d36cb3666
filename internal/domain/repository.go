// Package domain contains the core data structures and domain logic for the application.
package domain

// Repository is an immutable snapshot of a repository visible to a credential.
// It is fetched fresh on every discovery call and never cached across calls.
type Repository struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Owner           string `json:"owner"`
	Private         bool   `json:"private"`
	PrimaryLanguage string `json:"primary_language,omitempty"`
	HTMLURL         string `json:"html_url"`
}

// SourceRepository identifies the repository a commit was fetched from.
// It is attached by the aggregator after fetching; the upstream commit
// payload does not carry it.
type SourceRepository struct {
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}
