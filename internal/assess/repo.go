package assess

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a test, answer sheet or result does not
// exist. Handlers map it to 404.
var ErrNotFound = errors.New("not found")

type ListOpts struct {
	Q      string // subject substring filter
	Limit  int
	Offset int
}

type Store interface {
	PutTest(ctx context.Context, t Test) error
	GetTest(ctx context.Context, id string) (Test, error)
	GetTestByCode(ctx context.Context, code string) (Test, error)
	ListTests(ctx context.Context, opts ListOpts) ([]Test, error)
	DeleteTest(ctx context.Context, id string) (Test, error)

	PutAnswerSheet(ctx context.Context, s AnswerSheet) error
	// LatestAnswerSheetByULI returns the learner's most recent submission.
	LatestAnswerSheetByULI(ctx context.Context, uli string) (AnswerSheet, error)
	ListAnswerSheets(ctx context.Context) ([]AnswerSheet, error)
	ListAnswerSheetsByULI(ctx context.Context, uli string) ([]AnswerSheet, error)

	UpsertResult(ctx context.Context, r Result) (Result, error)
	GetResult(ctx context.Context, uli, testCode string) (Result, error)
	HasResult(ctx context.Context, uli, testID string) (bool, error)
	ListResults(ctx context.Context) ([]Result, error)
	ListResultsByULI(ctx context.Context, uli string) ([]Result, error)
	UpdateRemarks(ctx context.Context, uli, testCode, remarks string) (Result, error)
	DeleteResult(ctx context.Context, uli, testCode string) (Result, error)
}
