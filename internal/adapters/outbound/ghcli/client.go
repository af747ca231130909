// Package ghcli implements domain.ReviewPlatform by driving the gh CLI.
package ghcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prfix/prfix/internal/domain"
)

// Client is a gh-backed review platform. An empty Repo lets gh resolve the
// repository from the current checkout.
type Client struct {
	Runner Runner
	Repo   string
}

func NewClient(runner Runner, repo string) *Client {
	return &Client{Runner: runner, Repo: repo}
}

type userRef struct {
	Login string `json:"login"`
}

type prView struct {
	Number      int     `json:"number"`
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	Author      userRef `json:"author"`
	BaseRefName string  `json:"baseRefName"`
	HeadRefName string  `json:"headRefName"`
	State       string  `json:"state"`
	IsDraft     bool    `json:"isDraft"`
}

// apiComment is a pull request review comment from the REST API.
type apiComment struct {
	ID           int64     `json:"id"`
	Body         string    `json:"body"`
	Path         string    `json:"path"`
	Line         int       `json:"line"`
	OriginalLine int       `json:"original_line"`
	Side         string    `json:"side"`
	User         userRef   `json:"user"`
	CreatedAt    time.Time `json:"created_at"`
}

type apiReview struct {
	ID    int64   `json:"id"`
	Body  string  `json:"body"`
	State string  `json:"state"`
	User  userRef `json:"user"`
}

func (c *Client) PRInfo(ctx context.Context, pr int) (*domain.PRInfo, error) {
	args := c.withRepo("pr", "view", strconv.Itoa(pr), "--json", "number,title,body,author,baseRefName,headRefName,state,isDraft")
	out, err := c.run(ctx, "pr view", args, nil)
	if err != nil {
		return nil, err
	}
	var v prView
	if err := json.Unmarshal(out, &v); err != nil {
		return nil, domain.NewTransportError("pr view", fmt.Errorf("decoding output: %w", err))
	}
	return &domain.PRInfo{
		Number:  v.Number,
		Title:   v.Title,
		Body:    v.Body,
		Author:  v.Author.Login,
		BaseRef: v.BaseRefName,
		HeadRef: v.HeadRefName,
		State:   v.State,
		IsDraft: v.IsDraft,
	}, nil
}

func (c *Client) ReviewComments(ctx context.Context, pr int) ([]domain.RawComment, error) {
	comments, err := fetchAll[apiComment](ctx, c, c.pullPath(pr)+"/comments")
	if err != nil {
		return nil, err
	}
	return toRawComments(comments), nil
}

func (c *Client) Reviews(ctx context.Context, pr int) ([]domain.Review, error) {
	reviews, err := fetchAll[apiReview](ctx, c, c.pullPath(pr)+"/reviews")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		path := fmt.Sprintf("%s/reviews/%d/comments", c.pullPath(pr), r.ID)
		comments, err := fetchAll[apiComment](ctx, c, path)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Review{
			ID:       r.ID,
			Body:     r.Body,
			State:    r.State,
			Author:   r.User.Login,
			Comments: toRawComments(comments),
		})
	}
	return out, nil
}

func (c *Client) Diff(ctx context.Context, pr int, file string) (string, error) {
	out, err := c.run(ctx, "pr diff", c.withRepo("pr", "diff", strconv.Itoa(pr)), nil)
	if err != nil {
		return "", err
	}
	if file == "" {
		return string(out), nil
	}
	return domain.FileDiff(string(out), file), nil
}

func (c *Client) PostComment(ctx context.Context, pr int, body string) error {
	args := c.withRepo("pr", "comment", strconv.Itoa(pr), "--body-file", "-")
	_, err := c.run(ctx, "pr comment", args, []byte(body))
	return err
}

func (c *Client) pullPath(pr int) string {
	repo := "{owner}/{repo}"
	if c.Repo != "" {
		repo = c.Repo
	}
	return fmt.Sprintf("repos/%s/pulls/%d", repo, pr)
}

func (c *Client) withRepo(args ...string) []string {
	if c.Repo != "" {
		args = append(args, "--repo", c.Repo)
	}
	return args
}

// fetchAll reads every page of a list endpoint. gh --paginate prints one
// JSON array per page back to back.
func fetchAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	out, err := c.run(ctx, "api "+path, []string{"api", path, "--paginate"}, nil)
	if err != nil {
		return nil, err
	}

	var all []T
	dec := json.NewDecoder(bytes.NewReader(out))
	for {
		var page []T
		err := dec.Decode(&page)
		if errors.Is(err, io.EOF) {
			return all, nil
		}
		if err != nil {
			return nil, domain.NewTransportError("api "+path, fmt.Errorf("decoding output: %w", err))
		}
		all = append(all, page...)
	}
}

func (c *Client) run(ctx context.Context, op string, args []string, stdin []byte) ([]byte, error) {
	out, err := c.Runner.Run(ctx, args, stdin)
	if err != nil {
		return nil, domain.NewTransportError("gh "+op, err)
	}
	return out, nil
}

func toRawComments(comments []apiComment) []domain.RawComment {
	out := make([]domain.RawComment, 0, len(comments))
	for _, ac := range comments {
		line := ac.Line
		if line == 0 {
			line = ac.OriginalLine
		}
		out = append(out, domain.RawComment{
			ID:        ac.ID,
			Body:      ac.Body,
			Author:    ac.User.Login,
			Path:      ac.Path,
			Line:      line,
			Side:      ac.Side,
			CreatedAt: ac.CreatedAt,
		})
	}
	return out
}
