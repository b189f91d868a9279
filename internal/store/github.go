package store

import (
	"bytes"           // Request body buffers
	"context"         // Cancellation for remote round trips
	"encoding/base64" // Contents API payload encoding
	"encoding/json"   // API request/response bodies
	"fmt"             // Error formatting
	"net/http"        // Remote store transport
	"time"            // Client timeout

	"github.com/sirupsen/logrus" // Logging library
)

// GitHubBackend maps each dataset to one file in a GitHub repository via the
// contents API. The version marker is the blob SHA returned on read and
// supplied on update, so the remote side rejects overwrites of a state this
// process has not seen. Omitting the SHA creates the file.
type GitHubBackend struct {
	apiURL string
	repo   string
	branch string
	token  string
	client *http.Client
}

// NewGitHubBackend configures the remote store. repo is "owner/name";
// apiURL is overridable for tests and defaults to the public API.
func NewGitHubBackend(apiURL, repo, branch, token string) *GitHubBackend {
	if apiURL == "" {
		apiURL = "https://api.github.com"
	}
	return &GitHubBackend{
		apiURL: apiURL,
		repo:   repo,
		branch: branch,
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// contentsResponse is the subset of the contents API read response we use
type contentsResponse struct {
	Content string `json:"content"` // Base64-encoded file content
	SHA     string `json:"sha"`     // Blob SHA, our version marker
}

// url builds the contents endpoint for a dataset name
func (b *GitHubBackend) url(name string) string {
	return fmt.Sprintf("%s/repos/%s/contents/%s.csv", b.apiURL, b.repo, name)
}

// Load fetches the dataset file and returns its blob SHA as version
func (b *GitHubBackend) Load(ctx context.Context, name string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url(name)+"?ref="+b.branch, nil)
	if err != nil {
		return nil, "", err
	}
	b.authorize(req)
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("store: fetch %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("store: fetch %s: unexpected status %s", name, resp.Status)
	}
	var body contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, "", fmt.Errorf("store: decode %s response: %w", name, err)
	}
	data, err := base64.StdEncoding.DecodeString(body.Content)
	if err != nil {
		return nil, "", fmt.Errorf("store: decode %s content: %w", name, err)
	}
	return data, body.SHA, nil
}

// updateRequest is the contents API write payload
type updateRequest struct {
	Message string `json:"message"`       // Commit message
	Content string `json:"content"`       // Base64-encoded file content
	Branch  string `json:"branch"`        // Target branch
	SHA     string `json:"sha,omitempty"` // Last-known blob SHA, omitted on create
}

// Store overwrites the dataset file, supplying the last-known version so the
// remote can detect a concurrent modification
func (b *GitHubBackend) Store(ctx context.Context, name string, data []byte, version string) (string, error) {
	payload, err := json.Marshal(updateRequest{
		Message: "update " + name + " dataset",
		Content: base64.StdEncoding.EncodeToString(data),
		Branch:  b.branch,
		SHA:     version,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.url(name), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	b.authorize(req)
	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("store: update %s: %w", name, err)
	}
	defer resp.Body.Close()
	// 409 and 422 are how the contents API reports a stale SHA
	if resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity {
		logrus.WithFields(logrus.Fields{
			"dataset": name,        // Dataset that lost the race
			"status":  resp.Status, // Remote response status
		}).Warn("Remote store rejected stale overwrite")
		return "", ErrVersionConflict
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("store: update %s: unexpected status %s", name, resp.Status)
	}
	var body struct {
		Content struct {
			SHA string `json:"sha"` // New blob SHA after the write
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("store: decode %s response: %w", name, err)
	}
	return body.Content.SHA, nil
}

// authorize attaches the API token when one is configured
func (b *GitHubBackend) authorize(req *http.Request) {
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
}
