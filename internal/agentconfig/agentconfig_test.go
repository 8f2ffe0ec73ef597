package agentconfig

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

const sampleDoc = `
facilitator: Doc
agents:
  - name: Doc
    modelRef: claude
    instructions: You are the attending facilitator.
    facilitator: true
  - name: Lab
    modelRef: claude
    instructions: You review lab results.
    tools: ["lookupLabs"]
`

func TestLoad(t *testing.T) {
	fs := afs.New()
	ctx := context.Background()
	url := "mem://localhost/carecore-agentconfig-test/agents.yaml"
	require.NoError(t, fs.Upload(ctx, url, 0644, strings.NewReader(sampleDoc)))

	store, err := Load(ctx, fs, url)
	require.NoError(t, err)
	assert.Equal(t, "Doc", store.FacilitatorName())

	all := store.All()
	assert.Len(t, all, 2)

	doc, err := store.Load(ctx, "Doc")
	require.NoError(t, err)
	assert.True(t, doc.Facilitator)

	lab, err := store.Find(ctx, "Lab")
	require.NoError(t, err)
	assert.Equal(t, []string{"lookupLabs"}, lab.Tools)

	_, err = store.Load(ctx, "Nurse")
	assert.Error(t, err)
}
