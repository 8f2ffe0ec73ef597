package contextsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/carecore/genai/llm"
	"github.com/viant/carecore/internal/analyzer"
	"github.com/viant/carecore/internal/blobstore"
	"github.com/viant/carecore/internal/domain"
	"github.com/viant/carecore/internal/historystore"
	"github.com/viant/carecore/internal/registrystore"
)

type fakeModel struct{ response string }

func (f *fakeModel) Implements(feature string) bool { return false }
func (f *fakeModel) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Choices: []llm.Choice{{Message: llm.NewAssistantMessage(f.response)}}}, nil
}

func newTestService(t *testing.T, response string) (*Service, *registrystore.Store) {
	t.Helper()
	fs := afs.New()
	blobs := blobstore.New(fs, "mem://localhost/carecore-contextsvc-test")
	reg := registrystore.New(blobs)
	hist := historystore.New(blobs)
	validator, err := domain.NewPatientIDValidator("")
	require.NoError(t, err)
	an := analyzer.New(&fakeModel{response: response})
	now := func() time.Time { return time.Date(2025, 9, 30, 16, 45, 0, 0, time.UTC) }
	return New(reg, hist, an, validator, "archive", now), reg
}

func TestDecideAndApply_ActivateNew(t *testing.T) {
	svc, _ := newTestService(t, `{"action":"ACTIVATE_NEW","patient_id":"patient_4","reasoning":"x"}`)
	chatCtx := domain.NewChatContext("c1")
	decision, _, _, err := svc.DecideAndApply(context.Background(), "let's discuss patient_4's chart", chatCtx)
	require.NoError(t, err)
	assert.Equal(t, DecisionNewBlank, decision)
	assert.Equal(t, "patient_4", chatCtx.PatientID)
}

func TestDecideAndApply_NeedsPatientIDOnBadPattern(t *testing.T) {
	svc, _ := newTestService(t, `{"action":"ACTIVATE_NEW","patient_id":"bob","reasoning":"x"}`)
	chatCtx := domain.NewChatContext("c2")
	decision, _, _, err := svc.DecideAndApply(context.Background(), "let's talk about a patient now", chatCtx)
	require.NoError(t, err)
	assert.Equal(t, DecisionNeedsPatientID, decision)
	assert.Empty(t, chatCtx.PatientID)
}

func TestDecideAndApply_ShortMessageHeuristicSkipsAnalyzer(t *testing.T) {
	svc, _ := newTestService(t, `{"action":"CLEAR","reasoning":"should not be used"}`)
	chatCtx := domain.NewChatContext("c3")
	decision, _, _, err := svc.DecideAndApply(context.Background(), "ok thanks", chatCtx)
	require.NoError(t, err)
	assert.Equal(t, DecisionNone, decision)
}

func TestDecideAndApply_Clear(t *testing.T) {
	svc, reg := newTestService(t, `{"action":"CLEAR","reasoning":"user asked"}`)
	ctx := context.Background()
	chatCtx := domain.NewChatContext("c1")

	now := time.Date(2025, 9, 30, 16, 45, 0, 0, time.UTC)
	patient := domain.NewPatientContext("c1", "patient_4", now)
	active := "patient_4"
	_, err := reg.Upsert(ctx, "c1", patient, &active, now)
	require.NoError(t, err)
	chatCtx.PatientID = "patient_4"

	decision, _, report, err := svc.DecideAndApply(ctx, "please clear everything about this patient", chatCtx)
	require.NoError(t, err)
	assert.Equal(t, DecisionClear, decision)
	require.NotNil(t, report)
	assert.False(t, report.Failed())
	assert.Empty(t, chatCtx.PatientID)
}
