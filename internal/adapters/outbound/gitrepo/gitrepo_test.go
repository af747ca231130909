package gitrepo_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prfix/prfix/internal/adapters/outbound/gitrepo"
	"github.com/prfix/prfix/internal/domain"
)

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	writeFile(t, dir, "a.txt", "hello\n")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("a.txt")
	require.NoError(t, err)
	_, err = wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, repo
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestIsGitRepo(t *testing.T) {
	dir, _ := initRepo(t)
	assert.True(t, gitrepo.IsGitRepo(dir))
	assert.False(t, gitrepo.IsGitRepo(t.TempDir()))
}

func TestOpen_NotGitRepo(t *testing.T) {
	_, err := gitrepo.Open(t.TempDir())
	assert.Error(t, err)
}

func TestRepo_ChangedFilesStageAndCommit(t *testing.T) {
	dir, repo := initRepo(t)
	r, err := gitrepo.Open(dir)
	require.NoError(t, err)

	writeFile(t, dir, "a.txt", "hello world\n")
	writeFile(t, dir, "b.txt", "new\n")

	files, err := r.ChangedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, files)

	require.NoError(t, r.StageAll())
	hash, err := r.Commit("fix: Apply auto-fixes", domain.Signature{Name: "bot", Email: "bot@example.com"})
	require.NoError(t, err)
	assert.Len(t, hash, 40, "should be a full SHA-1 hash")

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, hash, head.Hash().String())

	files, err = r.ChangedFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRepo_CommitRecordsAuthor(t *testing.T) {
	dir, repo := initRepo(t)
	r, err := gitrepo.Open(dir)
	require.NoError(t, err)

	writeFile(t, dir, "a.txt", "changed\n")
	require.NoError(t, r.StageAll())
	_, err = r.Commit("msg", domain.Signature{Name: "github-actions[bot]", Email: "bot@users.noreply.github.com"})
	require.NoError(t, err)

	ref, err := repo.Head()
	require.NoError(t, err)
	c, err := repo.CommitObject(ref.Hash())
	require.NoError(t, err)
	assert.Equal(t, "github-actions[bot]", c.Author.Name)
	assert.Equal(t, "msg", c.Message)
}

func TestRepo_CommitWithoutChanges(t *testing.T) {
	dir, _ := initRepo(t)
	r, err := gitrepo.Open(dir)
	require.NoError(t, err)

	require.NoError(t, r.StageAll())
	_, err = r.Commit("empty", domain.Signature{Name: "bot", Email: "bot@example.com"})
	assert.ErrorIs(t, err, gitrepo.ErrNoChanges)
}

func TestRepo_Branch(t *testing.T) {
	dir, repo := initRepo(t)
	r, err := gitrepo.Open(dir)
	require.NoError(t, err)

	ref, err := repo.Head()
	require.NoError(t, err)
	branch, err := r.Branch()
	require.NoError(t, err)
	assert.Equal(t, ref.Name().Short(), branch)
}

func TestRepo_PushToBareRemote(t *testing.T) {
	if _, err := exec.LookPath("git-receive-pack"); err != nil {
		t.Skip("git-receive-pack not available")
	}
	dir, repo := initRepo(t)
	bare := t.TempDir()
	_, err := git.PlainInit(bare, true)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{bare}})
	require.NoError(t, err)

	r, err := gitrepo.Open(dir)
	require.NoError(t, err)
	require.NoError(t, r.Push(context.Background()))

	head, err := repo.Head()
	require.NoError(t, err)
	remote, err := git.PlainOpen(bare)
	require.NoError(t, err)
	ref, err := remote.Reference(head.Name(), true)
	require.NoError(t, err)
	assert.Equal(t, head.Hash(), ref.Hash())

	// A second push with nothing new is not an error.
	assert.NoError(t, r.Push(context.Background()))
}

func TestRepo_PushDetachedHead(t *testing.T) {
	dir, repo := initRepo(t)
	head, err := repo.Head()
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: head.Hash()}))

	r, err := gitrepo.Open(dir)
	require.NoError(t, err)
	_, err = r.Branch()
	assert.Error(t, err)

	err = r.Push(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "detached")
}

func TestRepo_PushWithoutRemote(t *testing.T) {
	dir, _ := initRepo(t)
	r, err := gitrepo.Open(dir, gitrepo.WithRemote("upstream"))
	require.NoError(t, err)

	err = r.Push(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestRepo_RepoSlug(t *testing.T) {
	dir, repo := initRepo(t)
	_, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:acme/widgets.git"}})
	require.NoError(t, err)

	r, err := gitrepo.Open(dir)
	require.NoError(t, err)
	slug, err := r.RepoSlug()
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", slug)
}

func TestParseSlug(t *testing.T) {
	tests := map[string]string{
		"https://github.com/acme/widgets.git": "acme/widgets",
		"https://github.com/acme/widgets":     "acme/widgets",
		"git@github.com:acme/widgets.git":     "acme/widgets",
		"ssh://git@github.com/acme/my.repo":   "acme/my.repo",
	}
	for url, want := range tests {
		got, err := gitrepo.ParseSlug(url)
		require.NoError(t, err, url)
		assert.Equal(t, want, got, url)
	}

	_, err := gitrepo.ParseSlug("widgets")
	assert.Error(t, err)
}
