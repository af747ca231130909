package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"github.com/prfix/prfix/internal/domain"
	"github.com/prfix/prfix/internal/domain/handler"
)

// maxPreviewBytes bounds the diff preview printed after an apply run.
const maxPreviewBytes = 1000

// ApplyService orchestrates the apply phase:
// load plan → visit files in order → edit → validate → write → commit.
type ApplyService struct {
	store   domain.PlanStore
	vcs     domain.VersionControl
	history domain.RunHistory
	commit  domain.CommitConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewApplyService wires the apply phase. vcs may be nil when the working tree
// is not a repository; preview and commit are then unavailable.
func NewApplyService(
	store domain.PlanStore,
	vcs domain.VersionControl,
	history domain.RunHistory,
	commit domain.CommitConfig,
	logger *slog.Logger,
) *ApplyService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ApplyService{
		store:   store,
		vcs:     vcs,
		history: history,
		commit:  commit,
		logger:  logger,
		now:     time.Now,
	}
}

// Run loads the plan at planPath and applies it to the tree rooted at root.
// The report is returned even when the trailing commit step fails.
func (s *ApplyService) Run(ctx context.Context, root, planPath string, opts domain.ApplyOptions) (*domain.ApplyReport, error) {
	plan, err := s.store.LoadPlan(planPath)
	if err != nil {
		return nil, fmt.Errorf("loading fix plan: %w", err)
	}
	if err := checkRepo(plan, opts.Repo); err != nil {
		return nil, err
	}
	if opts.OnPlan != nil {
		opts.OnPlan(plan)
	}
	s.logger.Info("applying fix plan", "items", plan.TotalItems, "files", len(plan.ItemsByFile()), "dry_run", opts.DryRun)

	report := s.ApplyPlan(ctx, root, plan, opts)

	if !opts.DryRun {
		report.Preview = s.preview(report)
	}

	var commitErr error
	if opts.Commit && !opts.DryRun {
		report.Commit, commitErr = s.commitAndPush(ctx, report)
	}

	s.record(root, plan, report)
	if commitErr != nil {
		return report, fmt.Errorf("committing fixes: %w", commitErr)
	}
	return report, nil
}

// checkRepo rejects a plan generated for another repository. Plans without a
// recorded repository match any.
func checkRepo(plan *domain.FixPlan, want string) error {
	if want == "" || plan.Metadata == nil || plan.Metadata.Repo == "" {
		return nil
	}
	if !strings.EqualFold(plan.Metadata.Repo, want) {
		return fmt.Errorf("%w: generated for %s, not %s", domain.ErrInvalidPlan, plan.Metadata.Repo, want)
	}
	return nil
}

// ApplyPlan visits plan files in before, parallel, after order. Every
// before-file finishes before any parallel-file starts. Only the parallel
// bucket fans out, bounded by opts.Workers.
func (s *ApplyService) ApplyPlan(ctx context.Context, root string, plan *domain.FixPlan, opts domain.ApplyOptions) *domain.ApplyReport {
	byFile := plan.ItemsByFile()
	total := 0
	for _, f := range plan.FileOrder() {
		if len(byFile[f]) > 0 {
			total++
		}
	}
	prog := &progress{total: total, fn: opts.OnProgress}

	report := &domain.ApplyReport{Results: []domain.FixResult{}, DryRun: opts.DryRun}
	report.Results = append(report.Results, s.applySequential(root, plan.SequentialFiles.Before, byFile, opts, prog)...)
	report.Results = append(report.Results, s.applyParallel(ctx, root, plan.ParallelFiles, byFile, opts, prog)...)
	report.Results = append(report.Results, s.applySequential(root, plan.SequentialFiles.After, byFile, opts, prog)...)
	report.Tally()

	s.logger.Info("apply finished", "succeeded", report.Succeeded, "failed", report.Failed)
	return report
}

func (s *ApplyService) applySequential(root string, files []string, byFile map[string][]domain.FixPlanItem, opts domain.ApplyOptions, prog *progress) []domain.FixResult {
	var results []domain.FixResult
	for _, f := range files {
		items := byFile[f]
		if len(items) == 0 {
			continue
		}
		results = append(results, s.applyFile(root, f, items, opts.DryRun))
		prog.step()
	}
	return results
}

func (s *ApplyService) applyParallel(ctx context.Context, root string, files []string, byFile map[string][]domain.FixPlanItem, opts domain.ApplyOptions, prog *progress) []domain.FixResult {
	if opts.Workers <= 1 {
		return s.applySequential(root, files, byFile, opts, prog)
	}

	// Buckets hold each path once, so one goroutine owns each file.
	slots := make([]*domain.FixResult, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, f := range files {
		items := byFile[f]
		if len(items) == 0 {
			continue
		}
		g.Go(func() error {
			res := s.applyFile(root, f, items, opts.DryRun)
			slots[i] = &res
			prog.step()
			return nil
		})
	}
	_ = g.Wait()

	var results []domain.FixResult
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

// ApplyFile applies all items for one file and reports the outcome. Content
// is written only if every edit succeeds and the result validates.
func ApplyFile(root, file string, items []domain.FixPlanItem, dryRun bool) domain.FixResult {
	result := domain.FixResult{File: file}

	path, err := resolve(root, file)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		result.Error = fmt.Errorf("%w: file not found: %s", domain.ErrMissingInput, file).Error()
		return result
	}
	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = fmt.Sprintf("reading %s: %v", file, err)
		return result
	}

	original := string(data)
	content := original
	h := handler.For(file)
	for _, item := range items {
		next, err := h.Apply(content, item)
		if err != nil {
			result.Error = fmt.Sprintf("applying %s fix: %v", item.Category, err)
			return result
		}
		if next != content {
			result.Edits++
		}
		content = next
	}

	for _, item := range items {
		if !h.Validate(content, item) {
			result.Error = fmt.Errorf("%w: %s content failed %s checks", domain.ErrValidation, file, h.Kind()).Error()
			return result
		}
	}

	result.Success = true
	result.Changed = content != original
	if !result.Changed || dryRun {
		return result
	}

	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		result.Success = false
		result.Error = fmt.Sprintf("writing %s: %v", file, err)
		return result
	}
	result.Changes = unifiedDiff(file, original, content)
	return result
}

func (s *ApplyService) applyFile(root, file string, items []domain.FixPlanItem, dryRun bool) domain.FixResult {
	s.logger.Debug("processing file", "file", file, "items", len(items))
	res := ApplyFile(root, file, items, dryRun)
	switch {
	case !res.Success:
		s.logger.Warn("file failed", "file", file, "error", res.Error)
	case res.Changed && dryRun:
		s.logger.Info("would write changes", "file", file, "edits", res.Edits)
	case res.Changed:
		s.logger.Info("changes written", "file", file, "edits", res.Edits)
	default:
		s.logger.Debug("no changes", "file", file)
	}
	return res
}

// resolve joins file onto root and rejects paths that escape it.
func resolve(root, file string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(root, file))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrMissingInput, file, err)
	}
	base, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrMissingInput, root, err)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the working tree", domain.ErrMissingInput, file)
	}
	return abs, nil
}

func unifiedDiff(file, before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + file,
		ToFile:   "b/" + file,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

// preview lists changed worktree paths and concatenates per-file diffs.
func (s *ApplyService) preview(report *domain.ApplyReport) *domain.DiffPreview {
	p := &domain.DiffPreview{Files: []string{}}
	if s.vcs != nil {
		files, err := s.vcs.ChangedFiles()
		if err != nil {
			s.logger.Warn("listing changed files", "error", err)
		} else {
			p.Files = files
		}
	}

	var b strings.Builder
	for _, r := range report.Results {
		b.WriteString(r.Changes)
	}
	p.Diff = b.String()
	if len(p.Diff) > maxPreviewBytes {
		p.Diff = p.Diff[:maxPreviewBytes]
		p.Truncated = true
	}
	return p
}

// commitAndPush stages the tree, commits with the templated message and
// pushes. It is skipped when no file succeeded or nothing changed.
func (s *ApplyService) commitAndPush(ctx context.Context, report *domain.ApplyReport) (*domain.CommitInfo, error) {
	if report.Succeeded == 0 || !report.Changed() {
		s.logger.Info("nothing to commit")
		return nil, nil
	}
	if s.vcs == nil {
		return nil, errors.New("working tree is not a git repository")
	}

	if err := s.vcs.StageAll(); err != nil {
		return nil, fmt.Errorf("staging changes: %w", err)
	}
	msg := s.commit.Message
	if msg == "" {
		msg = domain.DefaultCommitMessage
	}
	msg = strings.ReplaceAll(msg, "{{count}}", strconv.Itoa(report.Succeeded))

	hash, err := s.vcs.Commit(msg, s.commit.Author())
	if err != nil {
		return nil, fmt.Errorf("creating commit: %w", err)
	}
	info := &domain.CommitInfo{Hash: hash}
	s.logger.Info("changes committed", "hash", hash)

	if !s.commit.ShouldPush() {
		return info, nil
	}
	if err := s.vcs.Push(ctx); err != nil {
		return info, fmt.Errorf("pushing changes: %w", err)
	}
	info.Pushed = true
	s.logger.Info("changes pushed")
	return info, nil
}

func (s *ApplyService) record(root string, plan *domain.FixPlan, report *domain.ApplyReport) {
	if s.history == nil {
		return
	}
	entry := domain.RunEntry{
		RunID:     uuid.NewString(),
		Phase:     domain.PhaseApply,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Items:     plan.TotalItems,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		DryRun:    report.DryRun,
	}
	if plan.Metadata != nil {
		entry.RunID = plan.Metadata.RunID
		entry.PRNumber = plan.Metadata.PRNumber
	}
	if report.Commit != nil {
		entry.CommitHash = report.Commit.Hash
	}
	if err := s.history.Save(root, entry); err != nil {
		s.logger.Warn("recording run history", "error", err)
	}
}

// progress reports finished files to an optional callback.
type progress struct {
	mu    sync.Mutex
	done  int
	total int
	fn    func(done, total int)
}

func (p *progress) step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.fn != nil {
		p.fn(p.done, p.total)
	}
}
