package queue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateTaskRoundTrip(t *testing.T) {
	id := uuid.New()
	task, err := NewGenerateTask(id)
	require.NoError(t, err)
	require.Equal(t, TypeGenerate, task.Type())

	got, err := ParseGeneratePayload(task.Payload())
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestParseGeneratePayloadRejectsBadID(t *testing.T) {
	_, err := ParseGeneratePayload([]byte(`{"project_id":"nope"}`))
	require.Error(t, err)

	_, err = ParseGeneratePayload([]byte(`not json`))
	require.Error(t, err)
}
