package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/prfix/prfix/internal/adapters/outbound/config"
	"github.com/prfix/prfix/internal/adapters/outbound/ghcli"
	"github.com/prfix/prfix/internal/adapters/outbound/github"
	"github.com/prfix/prfix/internal/adapters/outbound/gitrepo"
	"github.com/prfix/prfix/internal/domain"
)

// App holds what every command needs once flags are parsed.
type App struct {
	Root   string
	Config domain.ProjectConfig
	Logger *slog.Logger
}

func initApp(path string, verbose bool, stderr io.Writer) (*App, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	// Values already in the environment win over .env.
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.New().Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return &App{Root: root, Config: cfg, Logger: logger}, nil
}

// resolve anchors relative artifact paths at the working tree root.
func (a *App) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.Root, path)
}

// repo picks the target repository: flag, then config, then the push remote.
// An empty result lets gh infer the repository from the checkout.
func (a *App) repo(flag string) string {
	if flag != "" {
		return flag
	}
	if a.Config.Repo != "" {
		return a.Config.Repo
	}
	r, err := gitrepo.Open(a.Root, gitrepo.WithRemote(a.Config.Commit.Remote))
	if err != nil {
		return ""
	}
	slug, err := r.RepoSlug()
	if err != nil {
		a.Logger.Debug("no repository from remote", "error", err)
		return ""
	}
	return slug
}

// platform builds the review platform for the configured backend.
// PRFIX_MOCK=1 serves gh calls from PRFIX_MOCK_DIR (default testdata/gh).
func (a *App) platform(ctx context.Context, repo string) (domain.ReviewPlatform, error) {
	if os.Getenv("PRFIX_MOCK") == "1" {
		fixtures := os.Getenv("PRFIX_MOCK_DIR")
		if fixtures == "" {
			fixtures = filepath.Join("testdata", "gh")
		}
		return ghcli.NewClient(ghcli.NewFixtureRunner(fixtures), repo), nil
	}

	switch a.Config.Backend {
	case domain.BackendAPI:
		if repo == "" {
			return nil, errors.New("the api backend needs --repo, a repo in .prfix.yaml, or an origin remote")
		}
		return github.NewFromEnv(ctx, repo)
	default:
		if err := ghcli.CheckInstalled(); err != nil {
			return nil, err
		}
		return ghcli.NewClient(ghcli.RealRunner{}, repo), nil
	}
}

// vcs opens the working tree for preview and commit. It returns nil outside
// a git checkout.
func (a *App) vcs() domain.VersionControl {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if !gitrepo.IsGitRepo(a.Root) {
		a.Logger.Debug("working tree is not a git repository", "path", a.Root)
		return nil
	}
	r, err := gitrepo.Open(a.Root, gitrepo.WithRemote(a.Config.Commit.Remote), gitrepo.WithToken(token))
	if err != nil {
		a.Logger.Warn("opening git repository", "error", err)
		return nil
	}
	return r
}
