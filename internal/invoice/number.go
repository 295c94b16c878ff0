package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberPrefix is the per-month numbering series, e.g. "FV/2025/01/".
func NumberPrefix(issue time.Time) string {
	return fmt.Sprintf("FV/%04d/%02d/", issue.Year(), int(issue.Month()))
}

func FormatNumber(issue time.Time, seq int) string {
	return NumberPrefix(issue) + strconv.Itoa(seq)
}

// NextSequence returns the sequence following the highest one in numbers
// that belongs to the series of issue.
func NextSequence(issue time.Time, numbers []string) int {
	prefix := NumberPrefix(issue)
	highest := 0

	for _, n := range numbers {
		rest, ok := strings.CutPrefix(n, prefix)
		if !ok {
			continue
		}

		seq, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}

		highest = max(highest, seq)
	}

	return highest + 1
}
