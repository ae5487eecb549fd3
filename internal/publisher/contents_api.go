package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// ContentsAPICommitter publishes artifacts straight to a GitHub
// repository through the Contents API, one commit per file. It is the
// remote-only alternative to GitCommitter for environments without a
// local clone.
type ContentsAPICommitter struct {
	token     string
	owner     string
	repo      string
	localRoot string
	client    *http.Client
}

// NewContentsAPICommitter targets owner/repo and reads file contents
// from localRoot.
func NewContentsAPICommitter(token, owner, repo, localRoot string) *ContentsAPICommitter {
	return &ContentsAPICommitter{
		token:     token,
		owner:     owner,
		repo:      repo,
		localRoot: localRoot,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ValidateToken checks the token against the authenticated-user endpoint.
func (c *ContentsAPICommitter) ValidateToken(ctx context.Context) error {
	if c.token == "" {
		return types.Errorf(types.ErrConfig, "GitHub token is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, "GET", "https://api.github.com/user", nil)
	if err != nil {
		return types.NewAppError(types.ErrPublish, "failed to create request", err)
	}
	c.setHeaders(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrNetwork, "failed to validate token", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return types.Errorf(types.ErrConfig, "GitHub token is invalid or expired")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.Errorf(types.ErrPublish, "GitHub API error: %s", string(body))
	}
	return nil
}

// remoteSHA returns the blob SHA for path, or "" when the file does not
// exist yet. The SHA is required by the API for updates.
func (c *ContentsAPICommitter) remoteSHA(ctx context.Context, path string) (string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/contents/%s", c.owner, c.repo, path)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", types.NewAppError(types.ErrPublish, "failed to create request", err)
	}
	c.setHeaders(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", types.NewAppError(types.ErrNetwork, "failed to check remote file", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", types.Errorf(types.ErrPublish, "GitHub API error: %s", string(body))
	}
	var fileInfo struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fileInfo); err != nil {
		return "", types.NewAppError(types.ErrPublish, "failed to parse response", err)
	}
	return fileInfo.SHA, nil
}

// CommitFile implements Committer. The file is read from the local
// tree and PUT to the same path in the remote repository.
func (c *ContentsAPICommitter) CommitFile(ctx context.Context, relPath, message string) error {
	content, err := os.ReadFile(filepath.Join(c.localRoot, filepath.FromSlash(relPath)))
	if err != nil {
		return types.NewAppError(types.ErrPublish, "failed to read "+relPath, err)
	}

	sha, err := c.remoteSHA(ctx, relPath)
	if err != nil {
		return err
	}

	requestBody := map[string]interface{}{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	if sha != "" {
		requestBody["sha"] = sha
	}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal request", err)
	}

	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/contents/%s", c.owner, c.repo, relPath)
	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewReader(jsonBody))
	if err != nil {
		return types.NewAppError(types.ErrPublish, "failed to create request", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrNetwork, "failed to upload "+relPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return types.Errorf(types.ErrPublish, "GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Sync implements Committer. Contents API commits are already remote,
// so there is nothing to reconcile.
func (c *ContentsAPICommitter) Sync(context.Context) error { return nil }

func (c *ContentsAPICommitter) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
