// Package github implements domain.ReviewPlatform on the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/prfix/prfix/internal/domain"
)

const perPage = 100

// Client talks to one repository through go-github.
type Client struct {
	client *gh.Client
	owner  string
	repo   string
}

// New returns a client for repo ("owner/name"). A non-empty token is sent as
// a bearer token.
func New(ctx context.Context, repo, token string) (*Client, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repo %q must be in owner/name form", repo)
	}

	var client *gh.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = gh.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		client = gh.NewClient(nil)
	}
	return &Client{client: client, owner: owner, repo: name}, nil
}

// NewFromEnv reads GITHUB_TOKEN (or GH_TOKEN) and an optional GITHUB_API_URL.
func NewFromEnv(ctx context.Context, repo string) (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	c, err := New(ctx, repo, token)
	if err != nil {
		return nil, err
	}
	if base := os.Getenv("GITHUB_API_URL"); base != "" {
		if err := c.SetBaseURL(base); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SetBaseURL points the client at another API root, such as GitHub
// Enterprise or a test server.
func (c *Client) SetBaseURL(base string) error {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("parsing api url: %w", err)
	}
	c.client.BaseURL = u
	return nil
}

func (c *Client) PRInfo(ctx context.Context, pr int) (*domain.PRInfo, error) {
	p, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, pr)
	if err != nil {
		return nil, domain.NewTransportError("get pull request", err)
	}
	return &domain.PRInfo{
		Number:  p.GetNumber(),
		Title:   p.GetTitle(),
		Body:    p.GetBody(),
		Author:  p.GetUser().GetLogin(),
		BaseRef: p.GetBase().GetRef(),
		HeadRef: p.GetHead().GetRef(),
		State:   p.GetState(),
		IsDraft: p.GetDraft(),
	}, nil
}

func (c *Client) ReviewComments(ctx context.Context, pr int) ([]domain.RawComment, error) {
	var out []domain.RawComment
	opts := &gh.PullRequestListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	for {
		comments, resp, err := c.client.PullRequests.ListComments(ctx, c.owner, c.repo, pr, opts)
		if err != nil {
			return nil, domain.NewTransportError("list review comments", err)
		}
		for _, rc := range comments {
			out = append(out, toRawComment(rc))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) Reviews(ctx context.Context, pr int) ([]domain.Review, error) {
	var out []domain.Review
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		reviews, resp, err := c.client.PullRequests.ListReviews(ctx, c.owner, c.repo, pr, opts)
		if err != nil {
			return nil, domain.NewTransportError("list reviews", err)
		}
		for _, r := range reviews {
			comments, err := c.reviewComments(ctx, pr, r.GetID())
			if err != nil {
				return nil, err
			}
			out = append(out, domain.Review{
				ID:       r.GetID(),
				Body:     r.GetBody(),
				State:    r.GetState(),
				Author:   r.GetUser().GetLogin(),
				Comments: comments,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) reviewComments(ctx context.Context, pr int, reviewID int64) ([]domain.RawComment, error) {
	out := []domain.RawComment{}
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		comments, resp, err := c.client.PullRequests.ListReviewComments(ctx, c.owner, c.repo, pr, reviewID, opts)
		if err != nil {
			return nil, domain.NewTransportError("list review comments", err)
		}
		for _, rc := range comments {
			out = append(out, toRawComment(rc))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) Diff(ctx context.Context, pr int, file string) (string, error) {
	diff, _, err := c.client.PullRequests.GetRaw(ctx, c.owner, c.repo, pr, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", domain.NewTransportError("get diff", err)
	}
	if file == "" {
		return diff, nil
	}
	return domain.FileDiff(diff, file), nil
}

func (c *Client) PostComment(ctx context.Context, pr int, body string) error {
	_, _, err := c.client.Issues.CreateComment(ctx, c.owner, c.repo, pr, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return domain.NewTransportError("create comment", err)
	}
	return nil
}

func toRawComment(rc *gh.PullRequestComment) domain.RawComment {
	line := rc.GetLine()
	if line == 0 {
		line = rc.GetOriginalLine()
	}
	return domain.RawComment{
		ID:        rc.GetID(),
		Body:      rc.GetBody(),
		Author:    rc.GetUser().GetLogin(),
		Path:      rc.GetPath(),
		Line:      line,
		Side:      rc.GetSide(),
		CreatedAt: rc.GetCreatedAt().Time,
	}
}
