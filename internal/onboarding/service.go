package onboarding

import (
	"context"
	"fmt"

	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

// UpsertObserver counts gateway outcomes.
type UpsertObserver interface {
	ObserveUpsert(path, status string)
}

// Service is the persistence gateway: it owns the create-vs-update branch
// and the fetch-before-merge step. Updates run inside the repository's Merge
// so the read-modify-write cannot race a concurrent writer.
type Service struct {
	repo    Repository
	synth   *Synthesizer
	logger  *logging.Logger
	upserts UpsertObserver
}

// NewService creates the gateway. upserts may be nil.
func NewService(repo Repository, synth *Synthesizer, logger *logging.Logger, upserts UpsertObserver) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, synth: synth, logger: logger, upserts: upserts}
}

// Upsert folds one answer batch into the record. A nil or zero id inserts a
// fresh record; a positive id merges into the existing one. A batch with no
// usable fields is still a successful no-op write.
func (s *Service) Upsert(ctx context.Context, recordID *int64, answers map[string]AnswerValue) (*Record, error) {
	if recordID == nil || *recordID == 0 {
		write := s.synth.Synthesize(answers, nil)
		rec, err := s.repo.Insert(ctx, write)
		if err != nil {
			s.observe("insert", "error")
			return nil, fmt.Errorf("onboarding: insert record: %w", err)
		}
		s.observe("insert", "ok")
		s.logger.Info("onboarding record created", "id", rec.ID, "columns", len(write))
		return rec, nil
	}

	if *recordID < 0 {
		return nil, ErrInvalidRecordID
	}

	rec, err := s.repo.Merge(ctx, *recordID, func(existing *Record) ColumnWrite {
		return s.synth.Synthesize(answers, existing)
	})
	if err != nil {
		if err == ErrRecordNotFound {
			s.observe("update", "not_found")
			return nil, err
		}
		s.observe("update", "error")
		return nil, fmt.Errorf("onboarding: update record %d: %w", *recordID, err)
	}
	s.observe("update", "ok")
	s.logger.Info("onboarding record updated", "id", rec.ID, "answers", len(answers))
	return rec, nil
}

// Get fetches a record by id.
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	if id <= 0 {
		return nil, ErrInvalidRecordID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) observe(path, status string) {
	if s.upserts != nil {
		s.upserts.ObserveUpsert(path, status)
	}
}
