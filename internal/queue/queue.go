// Package queue names the asynq tasks shared by the API and the worker.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TypeGenerate hands a new project to the generation pipeline.
	TypeGenerate = "project:generate"

	// QueueGeneration is the asynq queue generation tasks run on.
	QueueGeneration = "generation"
)

// GeneratePayload is the payload of a TypeGenerate task.
type GeneratePayload struct {
	ProjectID string `json:"project_id"`
}

// NewGenerateTask builds the task that starts generation for projectID.
func NewGenerateTask(projectID uuid.UUID) (*asynq.Task, error) {
	b, err := json.Marshal(GeneratePayload{ProjectID: projectID.String()})
	if err != nil {
		return nil, fmt.Errorf("marshal generate payload: %w", err)
	}
	return asynq.NewTask(TypeGenerate, b,
		asynq.Queue(QueueGeneration),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.TaskID("generate:"+projectID.String()),
	), nil
}

// ParseGeneratePayload decodes and validates a TypeGenerate payload.
func ParseGeneratePayload(data []byte) (uuid.UUID, error) {
	var p GeneratePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return uuid.Nil, fmt.Errorf("decode generate payload: %w", err)
	}
	id, err := uuid.Parse(p.ProjectID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project id %q: %w", p.ProjectID, err)
	}
	return id, nil
}
