package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func run(task string, ts time.Time, acc float64) TrainingRun {
	return TrainingRun{
		Task:         task,
		Rows:         100,
		TrainSamples: 80,
		TestSamples:  20,
		Metrics:      map[string]float64{"accuracy": acc},
		ArtifactPath: "models/" + task + ".json",
		Timestamp:    ts,
	}
}

func TestRunStore_AppendAndRecent(t *testing.T) {
	s := openStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(run("workout_success", base, 0.70)))
	require.NoError(t, s.Append(run("workout_success", base.Add(time.Hour), 0.80)))
	require.NoError(t, s.Append(run("recovery_time", base.Add(2*time.Hour), 0.90)))

	runs, err := s.Recent("workout_success", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, 0.80, runs[0].Metrics["accuracy"])
	assert.Equal(t, 0.70, runs[1].Metrics["accuracy"])
	assert.True(t, runs[0].Timestamp.After(runs[1].Timestamp))

	other, err := s.Recent("recovery_time", 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "models/recovery_time.json", other[0].ArtifactPath)
}

func TestRunStore_RecentLimit(t *testing.T) {
	s := openStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(run("recovery_time", base.Add(time.Duration(i)*time.Minute), float64(i))))
	}

	runs, err := s.Recent("recovery_time", 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 4.0, runs[0].Metrics["accuracy"])
	assert.Equal(t, 2.0, runs[2].Metrics["accuracy"])
}

func TestRunStore_UnknownTaskIsEmpty(t *testing.T) {
	s := openStore(t)

	runs, err := s.Recent("no_such_task", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Append(run("workout_success", time.Now().UTC(), 0.5)))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.Recent("workout_success", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRunStore_CloseNilSafe(t *testing.T) {
	var s RunStore
	assert.NoError(t, s.Close())
}
