package trust

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// BuildOptions configures a registry build.
type BuildOptions struct {
	Progress    io.Writer
	Now         func() time.Time
	Concurrency int
}

// BuildRegistry hashes every dataset in the manifest. Missing files are
// recorded with status missing rather than failing the build.
func BuildRegistry(ctx context.Context, manifest Manifest, opts BuildOptions) ([]model.DatasetRecord, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	verifiedAt := opts.Now().UTC()
	records := make([]model.DatasetRecord, len(manifest.Datasets))

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(manifest.Datasets),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("Hashing datasets"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, entry := range manifest.Datasets {
		g.Go(func() error {
			record, err := verifyDataset(gctx, entry, verifiedAt)
			if err != nil {
				return err
			}
			records[i] = record
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return records, nil
}

func verifyDataset(ctx context.Context, entry ManifestEntry, verifiedAt time.Time) (model.DatasetRecord, error) {
	record := model.DatasetRecord{
		ID:             entry.ID,
		Label:          entry.Label,
		Path:           entry.Path,
		Status:         model.DatasetMissing,
		LastVerifiedAt: verifiedAt,
		Attestation: &model.Attestation{
			Simulated:  true,
			ProofID:    fmt.Sprintf("eigen-sim::%s::%s", entry.ID, verifiedAt.Format(time.RFC3339)),
			Confidence: 0.9,
		},
		ZKP: &model.ZKPSimulation{
			Scheme:  "zkp-demo",
			Status:  "pass",
			Dataset: entry.ID,
		},
	}

	info, err := os.Stat(entry.Path)
	if errors.Is(err, os.ErrNotExist) {
		return record, nil
	}
	if err != nil {
		return model.DatasetRecord{}, fmt.Errorf("failed to stat %s: %w", entry.ID, err)
	}

	digest, err := hashFile(ctx, entry.Path)
	if err != nil {
		return model.DatasetRecord{}, fmt.Errorf("failed to hash %s: %w", entry.ID, err)
	}

	size := info.Size()
	record.Status = model.DatasetOK
	record.SizeBytes = &size
	record.SHA256 = digest
	return record, nil
}

// hashFile streams the file through SHA-256 in 1 MiB chunks.
func hashFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	buf := make([]byte, 1<<20)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, readErr := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", readErr
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SaveRegistry writes the registry as indented JSON.
func SaveRegistry(path string, records []model.DatasetRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// LoadRegistry reads a registry file. A missing file yields an empty registry.
func LoadRegistry(path string) ([]model.DatasetRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var records []model.DatasetRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return records, nil
}
