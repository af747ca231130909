package domain

// FileGroup holds every classified comment attached to one file.
type FileGroup struct {
	File     string              `json:"file"`
	Comments []ClassifiedComment `json:"comments"`
}

// ExecutionOrder partitions grouped files into risk-based buckets.
// Every file appears in exactly one bucket.
type ExecutionOrder struct {
	Before   []string `json:"before"`
	Parallel []string `json:"parallel"`
	After    []string `json:"after"`
}

// Files returns all files in visiting order: before, parallel, after.
func (o ExecutionOrder) Files() []string {
	files := make([]string, 0, len(o.Before)+len(o.Parallel)+len(o.After))
	files = append(files, o.Before...)
	files = append(files, o.Parallel...)
	return append(files, o.After...)
}

// GroupByFile groups comments by file in first-appearance order. Comments
// without a file land in the UnknownFile group.
func GroupByFile(comments []ClassifiedComment) []FileGroup {
	var groups []FileGroup
	index := make(map[string]int)

	for _, c := range comments {
		key := c.GroupKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, FileGroup{File: key})
		}
		groups[i].Comments = append(groups[i].Comments, c)
	}
	return groups
}

// DetermineExecutionOrder assigns each group to a bucket from its full
// comment set: critical or security goes before, else any low goes after,
// else parallel.
func DetermineExecutionOrder(groups []FileGroup) ExecutionOrder {
	order := ExecutionOrder{
		Before:   []string{},
		Parallel: []string{},
		After:    []string{},
	}

	for _, g := range groups {
		var gated, low bool
		for _, c := range g.Comments {
			if c.Priority == PriorityCritical || c.Category == CategorySecurity {
				gated = true
			}
			if c.Priority == PriorityLow {
				low = true
			}
		}

		switch {
		case gated:
			order.Before = append(order.Before, g.File)
		case low:
			order.After = append(order.After, g.File)
		default:
			order.Parallel = append(order.Parallel, g.File)
		}
	}
	return order
}

// GroupMap returns the groups keyed by file.
func GroupMap(groups []FileGroup) map[string][]ClassifiedComment {
	m := make(map[string][]ClassifiedComment, len(groups))
	for _, g := range groups {
		m[g.File] = g.Comments
	}
	return m
}
