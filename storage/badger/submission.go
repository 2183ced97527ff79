package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/smartbot/core"
	"github.com/poiesic/smartbot/storage"
)

// SubmissionRepository implements storage.SubmissionRepository for BadgerDB.
type SubmissionRepository struct {
	backend *Backend
}

var _ storage.SubmissionRepository = (*SubmissionRepository)(nil)

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(backend *Backend) (*SubmissionRepository, error) {
	return &SubmissionRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SubmissionRepository has no resources to release.
func (r *SubmissionRepository) Close() error {
	return nil
}

// AddSubmission stores a submission under a content-based ID.
func (r *SubmissionRepository) AddSubmission(ctx context.Context, submission *core.Submission) (*core.Submission, error) {
	if err := core.ValidateSubmission(submission); err != nil {
		return nil, err
	}

	if submission.Id == 0 {
		submission.Id = core.IDFromContent(submission.Tuple())
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now().UTC()
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSubmissionKey(submission.Id)

		// Content IDs make identical submissions collide on the same key.
		_, err := tx.Get(key)
		if err == nil {
			return storage.ErrDuplicate
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if err := tx.Set(key, storage.MarshalSubmission(submission)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// ListSubmissions retrieves all stored submissions.
func (r *SubmissionRepository) ListSubmissions(ctx context.Context) ([]*core.Submission, error) {
	var results []*core.Submission
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(submissionRecordPrefix + ":")
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			item := iter.Item()

			var submission *core.Submission
			err := item.Value(func(val []byte) error {
				var err error
				submission, err = storage.UnmarshalSubmission(val)
				return err
			})
			if err != nil {
				return err
			}
			if submission != nil {
				results = append(results, submission)
			}
		}
		return nil
	}, false)

	return results, err
}
