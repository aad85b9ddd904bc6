// Package pipeline orchestrates the chunk repair run: scan, decode, dedupe,
// re-encode, rewrite in place.
package pipeline

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"bundlefix/internal/bundle"
	"bundlefix/internal/contrib"
	"bundlefix/internal/scanner"
)

// Options configures a run.
type Options struct {
	// Root is the generated asset directory to repair.
	Root string

	// KeepGoing isolates per-file failures and continues with the rest of
	// the batch. Off by default: the run stops at the first failure so a
	// malformed chunk is never papered over.
	KeepGoing bool

	Logger *zap.Logger
}

// Stats summarizes a run. A file classified into both sets is counted once
// per pass.
type Stats struct {
	Processed int
	Rewritten int
	Skipped   int
	Failed    int
}

// Run executes both passes over the asset tree: first every primary-binding
// chunk, then every secondary-binding chunk. Files are handled one at a
// time; each is read, decoded, deduped, and truncated-and-rewritten within a
// single step, so no locking is needed. No backup copies are kept.
func Run(opts Options) (*Stats, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	res, err := scanner.Scan(opts.Root)
	if err != nil {
		return nil, err
	}
	log.Info("classified chunk files",
		zap.Int("primary", len(res.Primary)),
		zap.Int("secondary", len(res.Secondary)))

	stats := &Stats{}
	if err := runPass(res.Primary, bundle.VariantPrimary, opts, log, stats); err != nil {
		return stats, err
	}
	if err := runPass(res.Secondary, bundle.VariantSecondary, opts, log, stats); err != nil {
		return stats, err
	}
	log.Info("run complete",
		zap.Int("processed", stats.Processed),
		zap.Int("rewritten", stats.Rewritten),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

func runPass(paths []string, variant bundle.Variant, opts Options, log *zap.Logger, stats *Stats) error {
	log = log.With(zap.String("variant", string(variant)))
	for _, path := range paths {
		stats.Processed++
		rewrote, err := fixFile(path, variant)
		if err != nil {
			stats.Failed++
			if !opts.KeepGoing {
				return err
			}
			log.Error("leaving file unmodified", zap.String("path", path), zap.Error(err))
			continue
		}
		if rewrote {
			stats.Rewritten++
			log.Debug("rewrote chunk", zap.String("path", path))
		} else {
			stats.Skipped++
			log.Debug("no duplicates, skipped", zap.String("path", path))
		}
	}
	return nil
}

// fixFile repairs a single chunk. It reports whether the file was rewritten;
// chunks with one or zero contributor records are left byte-identical. Any
// error leaves the file untouched.
func fixFile(path string, variant bundle.Variant) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := bundle.Decode(string(raw))
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	records, err := contrib.FromPayload(doc.Contributors())
	if err != nil {
		return false, fmt.Errorf("contributors in %s: %w", path, err)
	}
	if len(records) <= 1 {
		return false, nil
	}
	doc.SetContributors(contrib.ToPayload(contrib.Dedupe(records)))
	encoded, err := bundle.Encode(doc, variant)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(encoded), 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
