// Package vectorize turns a CSV export of posts into the JSON Lines file the
// ingestion pipeline consumes, appending a sentence embedding to each row.
// This is the external collaborator that produces vectors; the ingestion
// pipeline itself never computes embeddings.
package vectorize

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const (
	// textColumn is the CSV column that gets embedded.
	textColumn = "full_text"
	// vectorColumn is the field appended to each output record.
	vectorColumn = "full_text_vector"
	// maxTextLen caps the text sent to the embedder, counted in runes.
	maxTextLen = 10000
)

// BatchEmbedder computes one vector per text.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Summary is the outcome of one vectorize run.
type Summary struct {
	RowsRead    int
	RowsWritten int
	RowsSkipped int // rows with no text content
}

// Vectorizer streams CSV rows through the embedder in batches and writes one
// JSON object per row.
type Vectorizer struct {
	embedder  BatchEmbedder
	batchSize int
	logger    *zap.Logger
}

// New creates a vectorizer.
func New(embedder BatchEmbedder, batchSize int, logger *zap.Logger) *Vectorizer {
	return &Vectorizer{embedder: embedder, batchSize: batchSize, logger: logger}
}

// Run reads CSV from in and writes JSON Lines to out. Rows with an empty text
// column are skipped and counted; they are never embedded.
func (v *Vectorizer) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	var sum Summary

	reader := csv.NewReader(in)
	header, err := reader.Read()
	if err != nil {
		return sum, fmt.Errorf("read csv header: %w", err)
	}
	textIdx := -1
	for i, col := range header {
		if col == textColumn {
			textIdx = i
		}
	}
	if textIdx < 0 {
		return sum, fmt.Errorf("csv has no %q column", textColumn)
	}

	batch := make([][]string, 0, v.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := v.writeBatch(ctx, header, textIdx, batch, out); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("read csv row %d: %w", sum.RowsRead+2, err)
		}
		sum.RowsRead++

		if textIdx >= len(row) || row[textIdx] == "" {
			sum.RowsSkipped++
			v.logger.Debug("skipping row with no text", zap.Int("row", sum.RowsRead))
			continue
		}
		if r := []rune(row[textIdx]); len(r) > maxTextLen {
			v.logger.Warn("truncating long text",
				zap.Int("row", sum.RowsRead),
				zap.Int("runes", len(r)),
			)
			row[textIdx] = string(r[:maxTextLen])
		}

		batch = append(batch, row)
		if len(batch) >= v.batchSize {
			written := len(batch)
			if err := flush(); err != nil {
				return sum, err
			}
			sum.RowsWritten += written
			v.logger.Info("batch embedded", zap.Int("written", sum.RowsWritten))
		}
	}

	written := len(batch)
	if err := flush(); err != nil {
		return sum, err
	}
	sum.RowsWritten += written

	return sum, nil
}

func (v *Vectorizer) writeBatch(
	ctx context.Context, header []string, textIdx int,
	rows [][]string, out io.Writer,
) error {
	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row[textIdx]
	}

	vectors, err := v.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	enc := json.NewEncoder(out)
	for i, row := range rows {
		record := make(map[string]any, len(header)+1)
		for j, col := range header {
			if j < len(row) {
				record[col] = row[j]
			}
		}
		record[vectorColumn] = vectors[i]
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}
