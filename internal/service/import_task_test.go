package service_test

import (
	"errors"
	"testing"

	"readr/internal/service"

	"github.com/stretchr/testify/require"
)

func TestImportTaskService_Lifecycle(t *testing.T) {
	tasks := service.NewImportTaskService()
	require.Nil(t, tasks.Get(1))

	id, ctx := tasks.Start(1)
	require.NotEmpty(t, id)
	require.NoError(t, ctx.Err())

	tasks.Update(1, id, service.ImportProgress{Total: 3, Current: 1, Feed: "Go Blog", Status: "importing"})
	task := tasks.Get(1)
	require.Equal(t, service.ImportRunning, task.Status)
	require.Equal(t, 3, task.Total)
	require.Equal(t, 1, task.Current)
	require.Equal(t, "Go Blog", task.Feed)

	tasks.Complete(1, id, service.ImportResult{Imported: 2, Skipped: 1})
	task = tasks.Get(1)
	require.Equal(t, service.ImportDone, task.Status)
	require.Equal(t, 3, task.Current)
	require.Empty(t, task.Feed)
	require.Equal(t, 2, task.Result.Imported)
	require.Error(t, ctx.Err())

	require.False(t, tasks.Cancel(1))
}

func TestImportTaskService_CancelAndRestart(t *testing.T) {
	tasks := service.NewImportTaskService()

	first, firstCtx := tasks.Start(7)
	require.True(t, tasks.Cancel(7))
	require.Error(t, firstCtx.Err())
	require.Equal(t, service.ImportCancelled, tasks.Get(7).Status)

	second, secondCtx := tasks.Start(7)
	require.NotEqual(t, first, second)

	// The cancelled import finishing late must not touch the new task.
	tasks.Fail(7, first, errors.New("context canceled"))
	tasks.Complete(7, first, service.ImportResult{Imported: 9})
	task := tasks.Get(7)
	require.Equal(t, second, task.ID)
	require.Equal(t, service.ImportRunning, task.Status)
	require.NoError(t, secondCtx.Err())

	tasks.Fail(7, second, errors.New("boom"))
	task = tasks.Get(7)
	require.Equal(t, service.ImportError, task.Status)
	require.Equal(t, "boom", task.Error)
}

func TestImportTaskService_StartCancelsRunningTask(t *testing.T) {
	tasks := service.NewImportTaskService()

	_, firstCtx := tasks.Start(3)
	_, secondCtx := tasks.Start(3)
	require.Error(t, firstCtx.Err())
	require.NoError(t, secondCtx.Err())

	// Tasks are per user.
	_, otherCtx := tasks.Start(4)
	require.NoError(t, otherCtx.Err())
	require.NoError(t, secondCtx.Err())
}

func TestImportTaskService_GetReturnsCopy(t *testing.T) {
	tasks := service.NewImportTaskService()
	id, _ := tasks.Start(1)
	tasks.Complete(1, id, service.ImportResult{Imported: 1})

	task := tasks.Get(1)
	task.Status = "tampered"
	task.Result.Imported = 100

	again := tasks.Get(1)
	require.Equal(t, service.ImportDone, again.Status)
	require.Equal(t, 1, again.Result.Imported)
}
