// Package githost talks to GitHub: a gist holds the link document and a
// repository serves as public file hosting.
package githost

import (
	"net/http"

	"github.com/google/go-github/v62/github"
)

// DefaultRawBaseURL serves raw repository files.
const DefaultRawBaseURL = "https://raw.githubusercontent.com"

// NewClient creates an authenticated GitHub API client.
// A nil httpClient uses http.DefaultClient.
func NewClient(token string, httpClient *http.Client) *github.Client {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return client
}
