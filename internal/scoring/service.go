package scoring

import (
	"context"
	"errors"
	"log"

	"github.com/skillforge/skillforge-tms/internal/assess"
)

// Service orchestrates scoring against the store. One Result row exists per
// (uli, test); the store's compound unique key plus upsert-by-key makes
// rescoring idempotent.
type Service struct {
	store assess.Store
}

func NewService(store assess.Store) *Service {
	return &Service{store: store}
}

// Score grades the learner's most recent answer sheet and upserts its
// Result. With force=false an already-scored (uli, test) pair is returned
// as-is; force=true recomputes and overwrites.
func (s *Service) Score(ctx context.Context, uli string, force bool) (assess.Result, error) {
	sheet, err := s.store.LatestAnswerSheetByULI(ctx, uli)
	if err != nil {
		return assess.Result{}, err
	}
	t, err := s.store.GetTest(ctx, sheet.TestID)
	if err != nil {
		return assess.Result{}, err
	}
	if !force {
		if has, err := s.store.HasResult(ctx, uli, t.ID); err != nil {
			return assess.Result{}, err
		} else if has {
			return s.store.GetResult(ctx, uli, t.TestCode)
		}
	}
	return s.scoreSheet(ctx, t, sheet)
}

// ScoreAll produces Results for every answer sheet that does not have one
// yet. Sheets arrive newest-first, so a learner who resubmitted is graded
// on the latest sheet and the earlier ones skip via the existing Result,
// same policy as Score. Sheets whose test is gone are skipped, as are pairs
// already scored; a bad sheet never aborts the batch. Returned slice holds
// only the newly created rows.
//
// Sheets are processed one at a time with no wrapping transaction, so a
// crash mid-batch leaves the rows written so far committed. Rerunning the
// batch picks up where it left off.
func (s *Service) ScoreAll(ctx context.Context) ([]assess.Result, error) {
	sheets, err := s.store.ListAnswerSheets(ctx)
	if err != nil {
		return nil, err
	}
	created := []assess.Result{}
	for _, sheet := range sheets {
		t, err := s.store.GetTest(ctx, sheet.TestID)
		if err != nil {
			if errors.Is(err, assess.ErrNotFound) {
				log.Printf("scoring: sheet %s references missing test %s, skipping", sheet.ID, sheet.TestID)
				continue
			}
			return created, err
		}
		has, err := s.store.HasResult(ctx, sheet.ULI, t.ID)
		if err != nil {
			return created, err
		}
		if has {
			continue
		}
		r, err := s.scoreSheet(ctx, t, sheet)
		if err != nil {
			return created, err
		}
		created = append(created, r)
	}
	return created, nil
}

func (s *Service) scoreSheet(ctx context.Context, t assess.Test, sheet assess.AnswerSheet) (assess.Result, error) {
	tally := Grade(t, sheet)
	return s.store.UpsertResult(ctx, assess.Result{
		ULI:            sheet.ULI,
		TestID:         t.ID,
		TestCode:       t.TestCode,
		Subject:        t.Subject,
		Score:          tally.Score,
		TotalQuestions: tally.TotalQuestions,
	})
}
