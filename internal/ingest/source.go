// Package ingest implements the batched ingestion pipeline:
// source → normalizer → batcher → submitter → classifier.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
)

// maxLineBytes bounds one source line. Vector-bearing posts run to a few
// hundred KB; 4 MiB leaves headroom without letting a corrupt line eat memory.
const maxLineBytes = 4 << 20

// Source streams posts from a JSON Lines reader, one structural unit per line.
// It never materializes the input and does not know its length in advance.
type Source struct {
	r      io.Reader
	logger *zap.Logger
}

// NewSource creates a source over a JSON Lines reader.
func NewSource(r io.Reader, logger *zap.Logger) *Source {
	return &Source{r: r, logger: logger}
}

// Posts reads the stream line by line, invoking fn for each decoded post.
// Blank lines are skipped. A line that fails to decode is logged and skipped;
// it never aborts the sequence. A non-nil error from fn stops iteration and
// propagates. Returns the number of skipped lines.
func (s *Source) Posts(ctx context.Context, fn func(domain.Post) error) (skipped int, err error) {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		select {
		case <-ctx.Done():
			return skipped, ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var post domain.Post
		if err := json.Unmarshal(line, &post); err != nil {
			skipped++
			s.logger.Warn("skipping malformed line",
				zap.Int("line", lineNo),
				zap.Error(err),
			)
			continue
		}

		if err := fn(post); err != nil {
			return skipped, err
		}
	}

	if err := scanner.Err(); err != nil {
		return skipped, fmt.Errorf("read line %d: %w", lineNo+1, err)
	}
	return skipped, nil
}
