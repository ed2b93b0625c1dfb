package dataset

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DeriveLabels scans the emitted train split, extracts the tag column,
// discards blank lines, and writes the sorted, deduplicated vocabulary to
// labelsPath. Re-running over the same train split yields a byte-for-byte
// identical file. Returns the number of distinct labels.
func DeriveLabels(trainPath, labelsPath string) (int, error) {
	f, err := os.Open(trainPath)
	if err != nil {
		return 0, fmt.Errorf("open train split: %w", err)
	}
	defer f.Close()

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		idx := strings.LastIndexByte(line, '\t')
		if idx < 0 {
			return 0, fmt.Errorf("train split %s: line %q has no tag column", trainPath, line)
		}
		tag := line[idx+1:]
		if tag == "" {
			continue
		}
		seen[tag] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan train split: %w", err)
	}

	labels := make([]string, 0, len(seen))
	for tag := range seen {
		labels = append(labels, tag)
	}
	sort.Strings(labels)

	var b strings.Builder
	for _, label := range labels {
		b.WriteString(label)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(labelsPath, []byte(b.String()), 0o644); err != nil {
		return 0, fmt.Errorf("write label vocabulary: %w", err)
	}

	return len(labels), nil
}
