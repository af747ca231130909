package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/prfix/prfix/internal/domain"
)

// ── Warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	priorityColors = map[domain.Priority]lipgloss.Color{
		domain.PriorityCritical: danger,
		domain.PriorityHigh:     lipgloss.Color("#FB923C"), // orange
		domain.PriorityMedium:   warning,
		domain.PriorityLow:      info,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	catNameStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderAnalysis formats an analysis for terminal output.
func RenderAnalysis(a *domain.Analysis) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("prfix")
	subtitle := dimStyle.Render(fmt.Sprintf("Review triage for PR #%d", a.PRNumber))
	counts := titleStyle.Render(fmt.Sprintf("%d comments  ·  %d files", a.TotalComments, len(a.GroupedByFile)))
	if a.SkippedComments > 0 {
		counts += "  " + warnStyle.Render(fmt.Sprintf("%d skipped", a.SkippedComments))
	}
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + counts))
	b.WriteString("\n\n")

	// ── Breakdown ──
	total := len(a.ParsedComments)
	b.WriteString("  " + titleStyle.Render("Priority") + "\n")
	for _, p := range domain.ValidPriorities {
		renderCount(&b, string(p), a.Summary.ByPriority[p], total, priorityColor(p))
	}
	b.WriteString("\n  " + titleStyle.Render("Category") + "\n")
	for _, c := range domain.ValidCategories {
		renderCount(&b, string(c), a.Summary.ByCategory[c], total, accent)
	}
	b.WriteString("\n  " + titleStyle.Render("Tool") + "\n")
	for _, t := range domain.ReviewTools {
		renderCount(&b, string(t.Name), a.Summary.ByTool[t.Name], total, accent)
	}
	renderCount(&b, string(domain.ToolUnknown), a.Summary.ByTool[domain.ToolUnknown], total, skipColor)

	b.WriteString("\n  " + separatorLine + "\n\n")

	// ── Execution order ──
	b.WriteString("  " + titleStyle.Render("Execution Order") + "\n")
	renderBucket(&b, "before", a.ExecutionOrder.Before, failStyle)
	renderBucket(&b, "parallel", a.ExecutionOrder.Parallel, passStyle)
	renderBucket(&b, "after", a.ExecutionOrder.After, dimStyle)

	// ── Recommendations ──
	if len(a.Recommendations) > 0 {
		b.WriteString("\n  " + titleStyle.Render("Recommendations") + "\n")
		for _, r := range a.Recommendations {
			fmt.Fprintf(&b, "    %s %s\n", warnStyle.Render("●"), r)
		}
	}

	b.WriteString("\n")
	return b.String()
}

func renderCount(b *strings.Builder, name string, n, total int, color lipgloss.Color) {
	if n == 0 {
		fmt.Fprintf(b, "    %s %s\n", skipStyle.Render(padRight(name, 16)), skipStyle.Render("0"))
		return
	}
	pct := 0
	if total > 0 {
		pct = n * 100 / total
	}
	bar := coloredBar(pct, 20, color)
	fmt.Fprintf(b, "    %s %s  %s\n", catNameStyle.Render(padRight(name, 16)), bar, dimStyle.Render(fmt.Sprintf("%d", n)))
}

func renderBucket(b *strings.Builder, name string, files []string, style lipgloss.Style) {
	label := style.Render(padRight(name, 10))
	if len(files) == 0 {
		fmt.Fprintf(b, "    %s %s\n", label, faintStyle.Render("(none)"))
		return
	}
	short := make([]string, len(files))
	for i, f := range files {
		short[i] = shortenPath(f)
	}
	fmt.Fprintf(b, "    %s %s\n", label, fileStyle.Render(strings.Join(short, ", ")))
}

func coloredBar(pct, width int, color lipgloss.Color) string {
	filled := max(0, min(pct*width/100, width))
	if pct > 0 && filled == 0 {
		filled = 1
	}
	empty := width - filled

	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func priorityColor(p domain.Priority) lipgloss.Color {
	if c, ok := priorityColors[p]; ok {
		return c
	}
	return fg
}

func shortenPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats the run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		ts := e.Timestamp
		if len(ts) > 10 {
			ts = ts[:10]
		}

		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(ts),
			faintStyle.Render(hash),
			titleStyle.Render(padRight(string(e.Phase), 8)),
			dimStyle.Render(fmt.Sprintf("PR #%d  %d items", e.PRNumber, e.Items)),
		)

		if e.Phase == domain.PhaseApply {
			line += "  " + passStyle.Render(fmt.Sprintf("✔%d", e.Succeeded))
			if e.Failed > 0 {
				line += " " + failStyle.Render(fmt.Sprintf("✘%d", e.Failed))
			}
			if e.DryRun {
				line += "  " + skipStyle.Render("dry-run")
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
