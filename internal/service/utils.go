package service

// truncatePreview cuts s to limit runes and marks the cut with "...".
func truncatePreview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
