package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/clevrprog/internal/logging"
	"github.com/aretw0/clevrprog/pkg/ports"
)

// ErrorPolicy decides what happens to a record that fails to convert.
type ErrorPolicy string

const (
	// OnErrorAbort stops the run at the first failing record.
	OnErrorAbort ErrorPolicy = "abort"
	// OnErrorSkip logs the failure and moves on.
	OnErrorSkip ErrorPolicy = "skip"
)

// ParseErrorPolicy validates a policy name. The empty string means abort.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(s) {
	case "", OnErrorAbort:
		return OnErrorAbort, nil
	case OnErrorSkip:
		return OnErrorSkip, nil
	}
	return "", fmt.Errorf("unknown error policy %q (want abort or skip)", s)
}

// chunkFactor sets how many records each worker gets per batch.
const chunkFactor = 8

// Stats summarizes a driver run.
type Stats struct {
	Read    int `json:"read"`
	TooLong int `json:"too_long"`
	Failed  int `json:"failed"`
	Emitted int `json:"emitted"`
}

// Driver converts the expressions of a corpus.
type Driver struct {
	Converter ports.Converter

	// Limit bounds the number of emitted records. Zero means no limit.
	Limit int
	// MaxLen drops sentences with more words. Zero means no limit.
	MaxLen int
	// Workers is the number of concurrent conversions. Values below one
	// mean one.
	Workers int
	OnError ErrorPolicy
	Logger  *slog.Logger
}

// Run reads src to the end (or until Limit records were emitted) and writes
// every converted record to sink in input order. The sink is not closed.
func (d *Driver) Run(ctx context.Context, src Source, sink Sink) (Stats, error) {
	var stats Stats
	if d.Converter == nil {
		return stats, errors.New("driver has no converter")
	}
	logger := d.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := max(d.Workers, 1)

	for {
		if d.Limit > 0 && stats.Emitted >= d.Limit {
			return stats, nil
		}
		size := workers * chunkFactor
		if d.Limit > 0 {
			size = min(size, d.Limit-stats.Emitted)
		}

		chunk, done, err := d.fill(src, size, &stats)
		if err != nil {
			return stats, err
		}

		results, errs := d.convert(ctx, chunk, workers)
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		for i, res := range results {
			if errs[i] != nil {
				stats.Failed++
				if d.OnError != OnErrorSkip {
					return stats, fmt.Errorf("record %d: %w", res.Index, errs[i])
				}
				logger.Warn("Skipping record", "index", res.Index, "err", errs[i])
				continue
			}
			if d.Limit > 0 && stats.Emitted >= d.Limit {
				break
			}
			if err := sink.Write(res); err != nil {
				return stats, fmt.Errorf("write record %d: %w", res.Index, err)
			}
			stats.Emitted++
		}
		logger.Debug("Chunk converted", "records", len(chunk), "emitted", stats.Emitted)

		if done {
			return stats, nil
		}
	}
}

// fill reads up to size eligible records. done reports the end of src.
func (d *Driver) fill(src Source, size int, stats *Stats) (chunk []Record, done bool, err error) {
	for len(chunk) < size {
		rec, err := src.Next()
		if err == io.EOF {
			return chunk, true, nil
		}
		if err != nil {
			return chunk, false, err
		}
		stats.Read++
		if d.MaxLen > 0 && WordCount(rec.Sentence) > d.MaxLen {
			stats.TooLong++
			continue
		}
		chunk = append(chunk, rec)
	}
	return chunk, false, nil
}

func (d *Driver) convert(ctx context.Context, chunk []Record, workers int) ([]Result, []error) {
	results := make([]Result, len(chunk))
	errs := make([]error, len(chunk))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range chunk {
		results[i].Record = rec
		if rec.Err != nil {
			errs[i] = rec.Err
			continue
		}
		g.Go(func() error {
			results[i].Output, errs[i] = d.Converter.ProcessContext(gctx, rec.Expression)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}
