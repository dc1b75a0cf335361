package google

import (
	"fmt"
	"strings"
)

// columnRange quotes the sheet name so names with spaces survive A1 notation.
func columnRange(sheet, cols string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cols)
}

// parseColumn reads the first cell of each row, skipping blanks and
// #-comments, and dedupes while preserving order.
func parseColumn(values [][]interface{}) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" || strings.HasPrefix(v, "#") {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
