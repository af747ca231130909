package ghcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes gh with the given arguments.
type Runner interface {
	Run(ctx context.Context, args []string, stdin []byte) ([]byte, error)
}

// RealRunner shells out to the gh binary on PATH.
type RealRunner struct{}

func (r RealRunner) Run(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	if len(stdin) > 0 {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("gh %v failed: %w\n%s", args, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// CheckInstalled reports whether gh is on PATH.
func CheckInstalled() error {
	if _, err := exec.LookPath("gh"); err != nil {
		return errors.New("gh CLI not found in PATH")
	}
	return nil
}

// FixtureRunner answers gh invocations from files under Root.
type FixtureRunner struct {
	Root string
}

func NewFixtureRunner(root string) FixtureRunner {
	return FixtureRunner{Root: root}
}

func (f FixtureRunner) Run(_ context.Context, args []string, _ []byte) ([]byte, error) {
	key := strings.Join(args, " ")
	var file string
	switch {
	case strings.Contains(key, "pr view"):
		file = "pr_view.json"
	case strings.Contains(key, "pr diff"):
		file = "pr_diff.txt"
	case strings.Contains(key, "pr comment"):
		return nil, nil
	case strings.Contains(key, "/reviews/"):
		id := reviewIDFromArgs(key)
		file = "review_" + id + "_comments.json"
	case strings.Contains(key, "/reviews"):
		file = "reviews.json"
	case strings.Contains(key, "/comments"):
		file = "review_comments.json"
	case strings.Contains(key, "auth status"):
		return []byte("logged in"), nil
	default:
		return nil, fmt.Errorf("no fixture for gh args: %s", key)
	}
	return os.ReadFile(filepath.Join(f.Root, file))
}

func reviewIDFromArgs(key string) string {
	_, rest, _ := strings.Cut(key, "/reviews/")
	id, _, _ := strings.Cut(rest, "/")
	return id
}
