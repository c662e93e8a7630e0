// Package storage keeps a durable history of training runs in BoltDB.
// It is an append-only audit log for reporting; artifacts themselves
// stay in single immutable files and are never served from here.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const runsBucket = "training_runs"

// TrainingRun records the outcome of one completed training run.
type TrainingRun struct {
	Task         string             `json:"task"`
	Rows         int                `json:"rows"`
	TrainSamples int                `json:"train_samples"`
	TestSamples  int                `json:"test_samples"`
	Metrics      map[string]float64 `json:"metrics"`
	ArtifactPath string             `json:"artifact_path"`
	Timestamp    time.Time          `json:"timestamp"`
}

// RunStore provides persistent storage for training-run records.
type RunStore struct {
	db *bbolt.DB
}

// Open opens (or creates) the run history database under dataPath.
func Open(dataPath string) (*RunStore, error) {
	dbPath := filepath.Join(dataPath, "fittrack-runs.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open run history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs bucket: %w", err)
	}

	return &RunStore{db: db}, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append stores one run record keyed "task_unixnano" so per-task history
// scans are simple prefix walks.
func (s *RunStore) Append(run TrainingRun) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}

		key := fmt.Sprintf("%s_%d", run.Task, run.Timestamp.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// Recent returns up to limit run records for a task, newest first.
func (s *RunStore) Recent(task string, limit int) ([]TrainingRun, error) {
	var runs []TrainingRun

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		prefix := []byte(task + "_")

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var run TrainingRun
			if err := json.Unmarshal(v, &run); err != nil {
				continue // skip malformed records
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Keys sort oldest-first; reverse and trim.
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
