package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tunedrive/tunedrive/internal/ctxlog"
	"github.com/tunedrive/tunedrive/internal/fsutil"
)

// DefaultMaxSeqLength bounds one emitted sequence: the downstream model's
// 512-token window minus its two special tokens.
const DefaultMaxSeqLength = 510

// ErrNoSplitPoint reports a single annotated region whose token count
// exceeds the maximum sequence length. Sequences split only at region
// boundaries, so such a region cannot be emitted without corrupting it.
var ErrNoSplitPoint = errors.New("region exceeds max sequence length with no split point")

// TrainFile, TestFile and LabelsFile are the names of the prepared-dataset
// artifacts inside the output directory.
const (
	TrainFile  = "train.txt"
	TestFile   = "test.txt"
	LabelsFile = "labels.txt"
)

// annotationFile mirrors one document's annotation JSON.
type annotationFile struct {
	Form []region `json:"form"`
}

type region struct {
	Text  string `json:"text"`
	Box   []int  `json:"box"`
	Label string `json:"label"`
	Words []word `json:"words"`
}

type word struct {
	Text string `json:"text"`
	Box  []int  `json:"box"`
}

// pair is one emitted token with its tag.
type pair struct {
	Token string
	Tag   string
}

// Converter turns an unpacked annotated-form archive into the token/tag
// files the token-classification trainer reads.
type Converter struct {
	// MaxSeqLength bounds each emitted sequence. Zero means
	// DefaultMaxSeqLength.
	MaxSeqLength int
}

// ConvertResult reports what a conversion produced.
type ConvertResult struct {
	TrainDocuments int
	TrainSequences int
	TestDocuments  int
	TestSequences  int
	LabelCount     int
}

// ConvertArchive partitions the archive into its train and test splits,
// converts each split's annotation records into length-bounded token/tag
// sequences, and derives the label vocabulary from the emitted train split.
// A missing or malformed archive aborts before anything is written.
func (c *Converter) ConvertArchive(ctx context.Context, archiveDir, outDir string) (*ConvertResult, error) {
	logger := ctxlog.FromContext(ctx)

	maxLen := c.MaxSeqLength
	if maxLen <= 0 {
		maxLen = DefaultMaxSeqLength
	}

	splits := []struct {
		name    string
		subdir  string
		outFile string
	}{
		{"train", "training_data", TrainFile},
		{"test", "testing_data", TestFile},
	}

	// Convert every split fully in memory before writing, so a bad archive
	// never leaves a partial output directory behind.
	converted := make([][][]pair, len(splits))
	documents := make([]int, len(splits))
	for i, split := range splits {
		annotationsDir := filepath.Join(archiveDir, split.subdir, "annotations")
		info, err := os.Stat(annotationsDir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("archive %s is missing the %s annotations directory", archiveDir, split.name)
		}

		files, err := fsutil.FindFilesByExtensions(annotationsDir, ".json")
		if err != nil {
			return nil, fmt.Errorf("scan %s annotations: %w", split.name, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("archive %s holds no %s annotation records", archiveDir, split.name)
		}

		sequences, err := c.convertSplit(files, maxLen)
		if err != nil {
			return nil, err
		}
		converted[i] = sequences
		documents[i] = len(files)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	result := &ConvertResult{}
	for i, split := range splits {
		outPath := filepath.Join(outDir, split.outFile)
		if err := writeSequences(outPath, converted[i]); err != nil {
			return nil, err
		}
		logger.Debug("Split converted.", "split", split.name, "documents", documents[i], "sequences", len(converted[i]))

		switch split.name {
		case "train":
			result.TrainDocuments = documents[i]
			result.TrainSequences = len(converted[i])
		case "test":
			result.TestDocuments = documents[i]
			result.TestSequences = len(converted[i])
		}
	}

	labels, err := DeriveLabels(filepath.Join(outDir, TrainFile), filepath.Join(outDir, LabelsFile))
	if err != nil {
		return nil, err
	}
	result.LabelCount = labels

	logger.Info("Annotation archive converted.",
		"out_dir", outDir,
		"train_sequences", result.TrainSequences,
		"test_sequences", result.TestSequences,
		"labels", result.LabelCount)
	return result, nil
}

// convertSplit converts every annotation file of one split into emitted
// sequences, preserving document and token order.
func (c *Converter) convertSplit(files []string, maxLen int) ([][]pair, error) {
	var sequences [][]pair
	for _, file := range files {
		regions, err := tagDocument(file)
		if err != nil {
			return nil, err
		}
		chunks, err := chunkRegions(regions, maxLen, file)
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, chunks...)
	}
	return sequences, nil
}

// tagDocument reads one annotation file and tags its tokens: regions labeled
// "other" tag every token O; any other label tags the first token B-<LABEL>
// and the rest I-<LABEL>.
func tagDocument(path string) ([][]pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotation %s: %w", path, err)
	}

	var doc annotationFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed annotation %s: %w", path, err)
	}

	var regions [][]pair
	for _, r := range doc.Form {
		var tokens []string
		for _, w := range r.Words {
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			tokens = append(tokens, text)
		}
		if len(tokens) == 0 {
			continue
		}

		tagged := make([]pair, len(tokens))
		label := strings.ToUpper(r.Label)
		for i, tok := range tokens {
			switch {
			case strings.EqualFold(r.Label, "other") || r.Label == "":
				tagged[i] = pair{Token: tok, Tag: "O"}
			case i == 0:
				tagged[i] = pair{Token: tok, Tag: "B-" + label}
			default:
				tagged[i] = pair{Token: tok, Tag: "I-" + label}
			}
		}
		regions = append(regions, tagged)
	}

	return regions, nil
}

// chunkRegions packs a document's regions into sequences of at most maxLen
// tokens, splitting only at region boundaries. Concatenating the chunks
// reproduces the document's original token order.
func chunkRegions(regions [][]pair, maxLen int, docName string) ([][]pair, error) {
	var chunks [][]pair
	var current []pair

	for i, r := range regions {
		if len(r) > maxLen {
			return nil, fmt.Errorf("%s: region %d holds %d tokens (max %d): %w",
				docName, i, len(r), maxLen, ErrNoSplitPoint)
		}
		if len(current)+len(r) > maxLen {
			chunks = append(chunks, current)
			current = nil
		}
		current = append(current, r...)
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	return chunks, nil
}

// writeSequences writes sequences as tab-separated token/tag lines with a
// blank line terminating each sequence.
func writeSequences(path string, sequences [][]pair) error {
	var b strings.Builder
	for _, seq := range sequences {
		for _, p := range seq {
			b.WriteString(p.Token)
			b.WriteByte('\t')
			b.WriteString(p.Tag)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
