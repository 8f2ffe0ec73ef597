package config

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	fs := afs.New()
	ctx := context.Background()
	url := "mem://localhost/carecore-config-test/config.yaml"
	require.NoError(t, fs.Upload(ctx, url, 0644, strings.NewReader("baseUrl: mem://localhost/carecore\n")))

	cfg, err := Load(ctx, fs, url)
	require.NoError(t, err)
	assert.Equal(t, "mem://localhost/carecore", cfg.BaseURL)
	assert.Equal(t, `^patient_[0-9]+$`, cfg.PatientIDPattern)
	assert.Equal(t, 30, cfg.MaxTurnIterations)
	assert.Equal(t, 120, cfg.TurnDeadlineSeconds)
	assert.Equal(t, "archive", cfg.ArchiveFolder)
	assert.Contains(t, cfg.ClearCommands, "clear patient context")
}

func TestLoad_RespectsOverrides(t *testing.T) {
	fs := afs.New()
	ctx := context.Background()
	url := "mem://localhost/carecore-config-test/override.yaml"
	doc := "patientIdPattern: '^pt-[0-9]+$'\nmaxTurnIterations: 5\n"
	require.NoError(t, fs.Upload(ctx, url, 0644, strings.NewReader(doc)))

	cfg, err := Load(ctx, fs, url)
	require.NoError(t, err)
	assert.Equal(t, "^pt-[0-9]+$", cfg.PatientIDPattern)
	assert.Equal(t, 5, cfg.MaxTurnIterations)
}
