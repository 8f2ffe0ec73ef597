// Package config loads the orchestration core's YAML configuration
// document via the same afs.Service the Blob Store Facade uses, so
// file://, mem://, and cloud-backed config locations resolve uniformly.
package config

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/carecore/internal/domain"
)

// ModelConfig names the default LLM backend the Agent Factory resolves
// modelRef-less agents against.
type ModelConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Region   string `yaml:"region,omitempty"`
}

// Config is the orchestration core's top-level configuration document.
type Config struct {
	BaseURL             string       `yaml:"baseUrl"`
	ArchiveFolder       string       `yaml:"archiveFolder"`
	PatientIDPattern    string       `yaml:"patientIdPattern"`
	MaxTurnIterations   int          `yaml:"maxTurnIterations"`
	TurnDeadlineSeconds int          `yaml:"turnDeadlineSeconds"`
	ClearCommands       []string     `yaml:"clearCommands"`
	AgentsConfigPath    string       `yaml:"agentsConfigPath"`
	Model               *ModelConfig `yaml:"model"`
}

// defaults fills in the recognized options' defaults for anything the
// document left zero-valued.
func (c *Config) defaults() {
	if c.PatientIDPattern == "" {
		c.PatientIDPattern = domain.DefaultPatientIDPattern
	}
	if c.MaxTurnIterations <= 0 {
		c.MaxTurnIterations = 30
	}
	if c.TurnDeadlineSeconds <= 0 {
		c.TurnDeadlineSeconds = 120
	}
	if len(c.ClearCommands) == 0 {
		c.ClearCommands = []string{"clear", "clear patient", "clear context", "clear patient context"}
	}
	if c.ArchiveFolder == "" {
		c.ArchiveFolder = "archive"
	}
}

// Load reads and parses the YAML document at url via fs. Recognized
// options left unset in the document fall back to their defaults.
func Load(ctx context.Context, fs afs.Service, url string) (*Config, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("config: download %s: %w", url, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", url, err)
	}
	cfg.defaults()
	return &cfg, nil
}
