package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeRegion builds one annotated region with n words.
func makeRegion(label string, n int, prefix string) region {
	r := region{Label: label, Box: []int{0, 0, 10, 10}}
	for i := 0; i < n; i++ {
		r.Words = append(r.Words, word{Text: fmt.Sprintf("%s%d", prefix, i), Box: []int{0, 0, 1, 1}})
	}
	return r
}

// writeAnnotation marshals a document into split's annotations directory.
func writeAnnotation(t *testing.T, archiveDir, split, name string, doc annotationFile) {
	t.Helper()
	dir := filepath.Join(archiveDir, split, "annotations")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

// readSequences parses an emitted split file back into sequences of lines.
func readSequences(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var sequences [][]string
	var current []string
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			if len(current) > 0 {
				sequences = append(sequences, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	require.Empty(t, current, "split file must end with a blank line")
	return sequences
}

func TestConvertArchive_Tagging(t *testing.T) {
	t.Parallel()

	archiveDir := t.TempDir()
	doc := annotationFile{Form: []region{
		{Label: "question", Box: []int{0, 0, 10, 10}, Words: []word{
			{Text: "Date:"}, {Text: "of"}, {Text: "birth"},
		}},
		{Label: "other", Box: []int{0, 0, 10, 10}, Words: []word{
			{Text: "page"}, {Text: "1"},
		}},
		{Label: "answer", Box: []int{0, 0, 10, 10}, Words: []word{
			{Text: "1923"}, {Text: " "}, // blank word is dropped
		}},
	}}
	writeAnnotation(t, archiveDir, "training_data", "doc0.json", doc)
	writeAnnotation(t, archiveDir, "testing_data", "doc1.json", doc)

	outDir := filepath.Join(t.TempDir(), "processed")
	conv := &Converter{}
	result, err := conv.ConvertArchive(context.Background(), archiveDir, outDir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TrainDocuments)
	assert.Equal(t, 1, result.TrainSequences)

	sequences := readSequences(t, filepath.Join(outDir, TrainFile))
	require.Len(t, sequences, 1)
	assert.Equal(t, []string{
		"Date:\tB-QUESTION",
		"of\tI-QUESTION",
		"birth\tI-QUESTION",
		"page\tO",
		"1\tO",
		"1923\tB-ANSWER",
	}, sequences[0])
}

func TestConvertArchive_SplitsLongDocument(t *testing.T) {
	t.Parallel()

	// 600 tokens across three regions against a 510 limit: the document
	// must be emitted as at least two sequences, each within the bound,
	// whose concatenation preserves token order.
	archiveDir := t.TempDir()
	longDoc := annotationFile{Form: []region{
		makeRegion("question", 200, "q"),
		makeRegion("answer", 200, "a"),
		makeRegion("header", 200, "h"),
	}}
	writeAnnotation(t, archiveDir, "training_data", "long.json", longDoc)
	writeAnnotation(t, archiveDir, "testing_data", "short.json", annotationFile{Form: []region{
		makeRegion("question", 3, "t"),
	}})

	outDir := filepath.Join(t.TempDir(), "processed")
	conv := &Converter{MaxSeqLength: 510}
	result, err := conv.ConvertArchive(context.Background(), archiveDir, outDir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.TrainSequences, 2)

	sequences := readSequences(t, filepath.Join(outDir, TrainFile))
	var all []string
	for _, seq := range sequences {
		assert.LessOrEqual(t, len(seq), 510)
		all = append(all, seq...)
	}
	require.Len(t, all, 600)

	// Token order across the split boundary matches the original document.
	assert.Equal(t, "q0\tB-QUESTION", all[0])
	assert.Equal(t, "q199\tI-QUESTION", all[199])
	assert.Equal(t, "a0\tB-ANSWER", all[200])
	assert.Equal(t, "h199\tI-HEADER", all[599])
}

func TestConvertArchive_RegionWithoutSplitPoint(t *testing.T) {
	t.Parallel()

	archiveDir := t.TempDir()
	writeAnnotation(t, archiveDir, "training_data", "huge.json", annotationFile{Form: []region{
		makeRegion("answer", 600, "w"),
	}})
	writeAnnotation(t, archiveDir, "testing_data", "ok.json", annotationFile{Form: []region{
		makeRegion("answer", 2, "w"),
	}})

	conv := &Converter{MaxSeqLength: 510}
	_, err := conv.ConvertArchive(context.Background(), archiveDir, t.TempDir())
	require.ErrorIs(t, err, ErrNoSplitPoint)
}

func TestConvertArchive_MalformedArchive(t *testing.T) {
	t.Parallel()

	t.Run("missing split directory", func(t *testing.T) {
		t.Parallel()
		archiveDir := t.TempDir()
		writeAnnotation(t, archiveDir, "training_data", "doc.json", annotationFile{Form: []region{
			makeRegion("answer", 2, "w"),
		}})
		// no testing_data at all
		outDir := filepath.Join(t.TempDir(), "processed")
		conv := &Converter{}
		_, err := conv.ConvertArchive(context.Background(), archiveDir, outDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "test annotations")

		// A rejected archive must not leave a half-written output directory
		// that a later preparedness check would count as prepared.
		assert.NoFileExists(t, filepath.Join(outDir, TrainFile))
		assert.NoDirExists(t, outDir)
	})

	t.Run("invalid json aborts", func(t *testing.T) {
		t.Parallel()
		archiveDir := t.TempDir()
		dir := filepath.Join(archiveDir, "training_data", "annotations")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))
		require.NoError(t, os.MkdirAll(filepath.Join(archiveDir, "testing_data", "annotations"), 0o755))

		conv := &Converter{}
		_, err := conv.ConvertArchive(context.Background(), archiveDir, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed annotation")
	})

	t.Run("absent archive aborts", func(t *testing.T) {
		t.Parallel()
		conv := &Converter{}
		_, err := conv.ConvertArchive(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
		require.Error(t, err)
	})
}

func TestDeriveLabels(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	trainPath := filepath.Join(tmpDir, TrainFile)
	labelsPath := filepath.Join(tmpDir, LabelsFile)

	train := "Date:\tB-QUESTION\nof\tI-QUESTION\n\npage\tO\n1923\tB-ANSWER\n\n"
	require.NoError(t, os.WriteFile(trainPath, []byte(train), 0o644))

	count, err := DeriveLabels(trainPath, labelsPath)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	data, err := os.ReadFile(labelsPath)
	require.NoError(t, err)
	assert.Equal(t, "B-ANSWER\nB-QUESTION\nI-QUESTION\nO\n", string(data))

	// Idempotent: re-running over the same train split yields identical bytes.
	_, err = DeriveLabels(trainPath, labelsPath)
	require.NoError(t, err)
	again, err := os.ReadFile(labelsPath)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestDeriveLabels_MissingTagColumn(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	trainPath := filepath.Join(tmpDir, TrainFile)
	require.NoError(t, os.WriteFile(trainPath, []byte("token-without-tag\n"), 0o644))

	_, err := DeriveLabels(trainPath, filepath.Join(tmpDir, LabelsFile))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tag column")
}
