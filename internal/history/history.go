// Package history implements the Build History Ledger, a bbolt-backed
// record of past job invocations supplementing the core specification.
// Grounded in the teacher's builddb.DB: one record per invocation, keyed
// by a UUID, with a status lifecycle from "running" to a terminal state,
// generalized from "port builds" to arbitrary (target, job) invocations.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Status is the lifecycle state of one recorded invocation.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

var (
	bucketRecords = []byte("records")
	bucketLatest  = []byte("latest")
)

// Record is one job invocation.
type Record struct {
	UUID      string    `json:"uuid"`
	Target    string    `json:"target"`
	Job       string    `json:"job"`
	Status    Status    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// Store wraps the bbolt database backing the ledger. Unlike the checksum
// records, its absence or corruption is never fatal — it is purely
// additive bookkeeping, never consulted for skip decisions.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the ledger database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRecords); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketLatest)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func latestKey(target, job string) []byte {
	return []byte(target + "|" + job)
}

// Start records a new running invocation and returns its UUID.
func (s *Store) Start(target, job string) (string, error) {
	id := uuid.New().String()
	rec := Record{UUID: id, Target: target, Job: job, Status: StatusRunning, StartTime: time.Now()}

	err := s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketRecords).Put([]byte(id), data); err != nil {
			return err
		}
		return tx.Bucket(bucketLatest).Put(latestKey(target, job), []byte(id))
	})
	if err != nil {
		return "", fmt.Errorf("history: start %s/%s: %w", target, job, err)
	}
	return id, nil
}

// Finish marks id's invocation with its terminal status.
func (s *Store) Finish(id string, status Status) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("history: unknown invocation %s", id)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		rec.Status = status
		rec.EndTime = time.Now()
		updated, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
}

// LatestFor returns the most recent recorded invocation for (target, job),
// or nil if none exists.
func (s *Store) LatestFor(target, job string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketLatest).Get(latestKey(target, job))
		if id == nil {
			return nil
		}
		data := tx.Bucket(bucketRecords).Get(id)
		if data == nil {
			return nil
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("history: lookup %s/%s: %w", target, job, err)
	}
	return rec, nil
}
