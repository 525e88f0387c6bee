package trust

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestEntry names one dataset to verify.
type ManifestEntry struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

// Manifest lists the datasets that make up the registry.
type Manifest struct {
	Datasets []ManifestEntry `yaml:"datasets"`
}

// LoadManifest reads a YAML manifest. Relative dataset paths are resolved
// against the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}

	base := filepath.Dir(path)
	for i, entry := range manifest.Datasets {
		if entry.Path != "" && !filepath.IsAbs(entry.Path) {
			manifest.Datasets[i].Path = filepath.Join(base, entry.Path)
		}
	}

	return manifest, manifest.Validate()
}

// Validate checks that every entry has an id and a path and ids are unique.
func (m Manifest) Validate() error {
	if len(m.Datasets) == 0 {
		return fmt.Errorf("manifest lists no datasets")
	}

	seen := make(map[string]struct{}, len(m.Datasets))
	for i, entry := range m.Datasets {
		if strings.TrimSpace(entry.ID) == "" {
			return fmt.Errorf("dataset %d has no id", i)
		}
		if strings.TrimSpace(entry.Path) == "" {
			return fmt.Errorf("dataset %s has no path", entry.ID)
		}
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("dataset %s is listed twice", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

// DefaultManifest lists the datasets the staking models are trained on,
// rooted at dir.
func DefaultManifest(dir string) Manifest {
	entries := []ManifestEntry{
		{ID: "etherfi_combined_labeled", Label: "EtherFi Combined Labeled Dataset", Path: "etherfi_combined_labeled.csv"},
		{ID: "etherfi_combined_raw", Label: "EtherFi Combined (Raw)", Path: "etherfi_combined.csv"},
		{ID: "final_with_sentiment", Label: "Final Dataset with Sentiment", Path: "data/final_with_sentiment.csv"},
		{ID: "eeth_apr", Label: "eETH APR Snapshot", Path: "datasets/eETH_APR.csv"},
		{ID: "eeth_active_holders", Label: "eETH Active Holder Snapshot", Path: "datasets/eETH_Active_Holder.csv"},
		{ID: "holder_retention", Label: "EtherFi Holder Retention", Path: "datasets/etherFI_Holder_retention.csv"},
		{ID: "deposit_retention", Label: "EtherFi Deposit Retention", Path: "datasets/etherFI_deposit_Retention.csv"},
	}
	for i := range entries {
		entries[i].Path = filepath.Join(dir, entries[i].Path)
	}
	return Manifest{Datasets: entries}
}
