// Package gitrepo implements domain.VersionControl on a local checkout with
// go-git.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/prfix/prfix/internal/domain"
)

// ErrNoChanges is returned by Commit when nothing is staged.
var ErrNoChanges = errors.New("no changes to commit")

// Repo is a go-git backed working tree.
type Repo struct {
	repo   *git.Repository
	remote string
	token  string
}

// Option configures a Repo.
type Option func(*Repo)

// WithRemote sets the push remote. Defaults to origin.
func WithRemote(name string) Option {
	return func(r *Repo) {
		if name != "" {
			r.remote = name
		}
	}
}

// WithToken sets the token used for HTTPS pushes.
func WithToken(token string) Option {
	return func(r *Repo) { r.token = token }
}

// Open opens the repository containing path.
func Open(path string, opts ...Option) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}
	r := &Repo{repo: repo, remote: "origin"}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// IsGitRepo reports whether path is inside a git working tree.
func IsGitRepo(path string) bool {
	_, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// StageAll stages every change, including deletions (git add -A).
func (r *Repo) StageAll() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return domain.NewTransportError("git worktree", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return domain.NewTransportError("git add", err)
	}
	return nil
}

// Commit records the staged changes and returns the new commit hash.
func (r *Repo) Commit(message string, author domain.Signature) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", domain.NewTransportError("git worktree", err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", domain.NewTransportError("git status", err)
	}
	staged := false
	for _, s := range status {
		if s.Staging != git.Unmodified && s.Staging != git.Untracked {
			staged = true
			break
		}
	}
	if !staged {
		return "", ErrNoChanges
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", domain.NewTransportError("git commit", err)
	}
	return hash.String(), nil
}

// Push pushes the current branch to the configured remote.
func (r *Repo) Push(ctx context.Context) error {
	short, err := r.Branch()
	if err != nil {
		return domain.NewTransportError("git push", err)
	}

	branch := plumbing.NewBranchReferenceName(short)
	opts := &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(branch.String() + ":" + branch.String())},
	}
	if auth := r.auth(); auth != nil {
		opts.Auth = auth
	}

	err = r.repo.PushContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return domain.NewTransportError("git push", err)
	}
	return nil
}

func (r *Repo) auth() transport.AuthMethod {
	if r.token == "" {
		return nil
	}
	url, err := r.remoteURL()
	if err != nil || !strings.HasPrefix(url, "http") {
		return nil
	}
	return &http.BasicAuth{Username: "x-access-token", Password: r.token}
}

// ChangedFiles lists working-tree paths that differ from HEAD, sorted.
func (r *Repo) ChangedFiles() ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, domain.NewTransportError("git worktree", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, domain.NewTransportError("git status", err)
	}

	files := []string{}
	for path, s := range status {
		if s.Worktree == git.Unmodified && s.Staging == git.Unmodified {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// Branch returns the short name of the current branch.
func (r *Repo) Branch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}
	if head.Name() == plumbing.HEAD || !head.Name().IsBranch() {
		return "", errors.New("HEAD is detached")
	}
	return head.Name().Short(), nil
}

func (r *Repo) remoteURL() (string, error) {
	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return "", fmt.Errorf("looking up remote %s: %w", r.remote, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", r.remote)
	}
	return urls[0], nil
}

// RepoSlug derives owner/name from the push remote URL.
func (r *Repo) RepoSlug() (string, error) {
	url, err := r.remoteURL()
	if err != nil {
		return "", err
	}
	return ParseSlug(url)
}

var slugRe = regexp.MustCompile(`[:/]([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)

// ParseSlug extracts owner/name from an HTTPS or SSH remote URL.
func ParseSlug(url string) (string, error) {
	m := slugRe.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("cannot derive owner/name from remote %q", url)
	}
	return m[1] + "/" + m[2], nil
}
