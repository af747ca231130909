package tui

import (
	"fmt"
	"strings"

	"github.com/prfix/prfix/internal/domain"
)

const planMaxRows = 15

// RenderPlan produces a terminal view of a fix plan: a summary header and a
// per-file table in visit order.
func RenderPlan(plan *domain.FixPlan) string {
	if plan == nil || plan.TotalItems == 0 {
		return "\n  " + dimStyle.Render("Fix plan has no actionable items.") + "\n\n"
	}

	var b strings.Builder
	renderPlanHeader(&b, plan)
	renderPlanTable(&b, plan)
	return b.String()
}

func renderPlanHeader(b *strings.Builder, plan *domain.FixPlan) {
	title := headerStyle.Render("Fix Plan")
	prLine := ""
	if plan.Metadata != nil {
		prLine = titleStyle.Render(fmt.Sprintf("PR #%d", plan.Metadata.PRNumber)) + "  " + faintStyle.Render(plan.Metadata.RunID)
	}

	order := plan.Order()
	stats := dimStyle.Render(fmt.Sprintf("%d items  ·  %d before  ·  %d parallel  ·  %d after",
		plan.TotalItems, len(order.Before), len(order.Parallel), len(order.After)))

	b.WriteString(boxStyle.Render(title + "\n\n" + prLine + "\n" + stats))
	b.WriteString("\n\n")
}

type planRow struct {
	file   string
	bucket string
	items  []domain.FixPlanItem
}

func renderPlanTable(b *strings.Builder, plan *domain.FixPlan) {
	byFile := plan.ItemsByFile()
	order := plan.Order()

	var rows []planRow
	add := func(bucket string, files []string) {
		for _, f := range files {
			if len(byFile[f]) > 0 {
				rows = append(rows, planRow{file: f, bucket: bucket, items: byFile[f]})
			}
		}
	}
	add("before", order.Before)
	add("parallel", order.Parallel)
	add("after", order.After)

	hdrLine := fmt.Sprintf("  %-32s %5s  %-10s  %s", "File", "Items", "Bucket", "Top priority")
	b.WriteString(titleStyle.Render(hdrLine) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 68)) + "\n")

	shown := min(planMaxRows, len(rows))
	for _, r := range rows[:shown] {
		top := topPriority(r.items)
		line := fmt.Sprintf("  %s %5d  %s  %s",
			dimStyle.Render(truncateOrPad(r.file, 32)),
			len(r.items),
			bucketLabel(r.bucket),
			priorityLabel(top),
		)
		b.WriteString(line + "\n")
	}

	if remaining := len(rows) - shown; remaining > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  (%d more files)\n", remaining)))
	}
	b.WriteString("\n")
}

func bucketLabel(bucket string) string {
	s := padRight(bucket, 10)
	switch bucket {
	case "before":
		return failStyle.Render(s)
	case "parallel":
		return passStyle.Render(s)
	}
	return dimStyle.Render(s)
}

func topPriority(items []domain.FixPlanItem) domain.Priority {
	for _, p := range domain.ValidPriorities {
		for _, it := range items {
			if it.Priority == p {
				return p
			}
		}
	}
	return domain.PriorityLow
}

func priorityLabel(p domain.Priority) string {
	return titleStyle.Foreground(priorityColor(p)).Render(string(p))
}

func truncateOrPad(s string, width int) string {
	if len(s) > width {
		return s[:width-1] + "…"
	}
	return padRight(s, width)
}
