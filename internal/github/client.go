// Package github serves HR policy documents from a GitHub repository.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v56/github"
	"golang.org/x/oauth2"
)

type Client struct {
	client *github.Client
	owner  string
	repo   string
	ref    string
}

func NewClient(token, owner, repo, ref string) *Client {
	var client *github.Client

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(context.Background(), ts)
		client = github.NewClient(tc)
	} else {
		client = github.NewClient(nil)
	}

	return &Client{
		client: client,
		owner:  owner,
		repo:   repo,
		ref:    ref,
	}
}

// NewClientWithBaseURL points the client at a GitHub Enterprise or test API root.
func NewClientWithBaseURL(token, owner, repo, ref, baseURL string) (*Client, error) {
	c := NewClient(token, owner, repo, ref)
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github base url: %w", err)
	}
	c.client.BaseURL = u
	return c, nil
}

// Fetch returns a file's decoded content and its html link.
func (c *Client) Fetch(ctx context.Context, path string) (string, string, error) {
	file, _, _, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path, c.contentOptions())
	if err != nil {
		return "", "", fmt.Errorf("failed to get %s from %s/%s: %w", path, c.owner, c.repo, err)
	}
	if file == nil {
		return "", "", fmt.Errorf("%s in %s/%s is a directory", path, c.owner, c.repo)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return content, file.GetHTMLURL(), nil
}

// ListDocuments lists the files directly under dir.
func (c *Client) ListDocuments(ctx context.Context, dir string) ([]string, error) {
	_, entries, _, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, dir, c.contentOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s in %s/%s: %w", dir, c.owner, c.repo, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.GetType() == "file" {
			files = append(files, entry.GetPath())
		}
	}
	return files, nil
}

func (c *Client) contentOptions() *github.RepositoryContentGetOptions {
	if c.ref == "" {
		return nil
	}
	return &github.RepositoryContentGetOptions{Ref: c.ref}
}
