package services

import (
	"context"
	"errors"
	"testing"

	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/internal/queue"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProjectServiceMocks() (*mockProjectRepository, *mockFileRepository, *mockProgressRepository, *mockEnqueuer) {
	return &mockProjectRepository{}, &mockFileRepository{}, &mockProgressRepository{}, &mockEnqueuer{}
}

func TestCreateProjectEnqueuesGeneration(t *testing.T) {
	projects, files, progress, q := newProjectServiceMocks()
	svc := NewProjectService(projects, files, progress, q)

	projects.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Project) bool {
		return p.Name == "Calculator" && p.Prompt == "Create a calculator" && p.Status == models.ProjectPending
	})).Return(nil).Once()
	q.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		return task.Type() == queue.TypeGenerate
	})).Return(&asynq.TaskInfo{}, nil).Once()

	p, err := svc.CreateProject(context.Background(), nil, &CreateProjectInput{Name: "Calculator", Prompt: "  Create a calculator \n"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Nil(t, p.UserID)
	mock.AssertExpectationsForObjects(t, projects, q)
}

func TestCreateProjectRejectsBlankPrompt(t *testing.T) {
	projects, files, progress, q := newProjectServiceMocks()
	svc := NewProjectService(projects, files, progress, q)

	_, err := svc.CreateProject(context.Background(), nil, &CreateProjectInput{Name: "x", Prompt: "   "})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	projects.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProjectFailsProjectWhenQueueIsDown(t *testing.T) {
	projects, files, progress, q := newProjectServiceMocks()
	svc := NewProjectService(projects, files, progress, q)

	projects.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	q.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, errors.New("redis down")).Once()
	projects.On("UpdateStatus", mock.Anything, mock.Anything, models.ProjectFailed).Return(nil).Once()

	_, err := svc.CreateProject(context.Background(), nil, &CreateProjectInput{Prompt: "Build a todo app"})
	require.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
	mock.AssertExpectationsForObjects(t, projects, q)
}

func TestCreateProjectWithoutQueue(t *testing.T) {
	projects, files, progress, _ := newProjectServiceMocks()
	svc := NewProjectService(projects, files, progress, nil)
	projects.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	p, err := svc.CreateProject(context.Background(), nil, &CreateProjectInput{Prompt: "Build a todo app"})
	require.NoError(t, err)
	assert.Equal(t, "Build a todo app", p.Name)
}

func TestListProjectsScopesToUser(t *testing.T) {
	projects, files, progress, q := newProjectServiceMocks()
	svc := NewProjectService(projects, files, progress, q)
	uid := uuid.New()

	projects.On("ListByUser", mock.Anything, uid).Return([]models.Project{{Name: "mine"}}, nil).Once()
	projects.On("List", mock.Anything).Return([]models.Project{{Name: "mine"}, {Name: "theirs"}}, nil).Once()

	mine, err := svc.ListProjects(context.Background(), &uid)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListProjects(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListFilesRequiresProject(t *testing.T) {
	projects, files, progress, q := newProjectServiceMocks()
	svc := NewProjectService(projects, files, progress, q)
	id := uuid.New()

	projects.On("GetByID", mock.Anything, id, mock.Anything).Return(appErr.New(appErr.CodeNotFound, "project not found"), nil).Once()

	_, err := svc.ListFiles(context.Background(), id)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	files.AssertNotCalled(t, "ListByProject", mock.Anything, mock.Anything)
}
