package domain

import "strings"

// FileDiff returns the sections of a multi-file unified diff that touch file.
// It returns "" when the file is not part of the diff.
func FileDiff(diff, file string) string {
	var b strings.Builder
	keep := false
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			header := strings.TrimSuffix(line, "\n")
			keep = strings.HasSuffix(header, " b/"+file)
		}
		if keep {
			b.WriteString(line)
		}
	}
	return b.String()
}
