package assess_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/skillforge/skillforge-tms/internal/assess"
	"github.com/skillforge/skillforge-tms/internal/db"
	"github.com/skillforge/skillforge-tms/internal/scoring"

	_ "modernc.org/sqlite" // driver for "sqlite"
)

var dbSeq int

func openStore(t *testing.T) *assess.SQLStore {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:assess_test_%d.db?mode=memory&cache=shared", dbSeq)
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return assess.NewSQLStore(dbh, "sqlite")
}

func seedTest(t *testing.T, store *assess.SQLStore) assess.Test {
	t.Helper()
	test := assess.Test{
		ID:          "t1",
		TestCode:    "ABCD1234",
		Subject:     "Shielded Metal Arc Welding",
		Instruction: "Choose the best answer.",
		Questions: []assess.Question{
			{
				ID:           "q1",
				QuestionText: "Which electrode angle is correct for a flat weld?",
				Options: []assess.Option{
					{ID: "q1-a", Text: "45 degrees", IsCorrect: true},
					{ID: "q1-b", Text: "90 degrees"},
					{ID: "q1-c", Text: "10 degrees"},
					{ID: "q1-d", Text: "70 degrees"},
				},
			},
		},
	}
	if err := store.PutTest(context.Background(), test); err != nil {
		t.Fatalf("put test: %v", err)
	}
	return test
}

func TestTestRoundTripAndCodeLookup(t *testing.T) {
	store := openStore(t)
	seedTest(t, store)
	ctx := context.Background()

	got, err := store.GetTest(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Questions) != 1 || len(got.Questions[0].Options) != 4 {
		t.Fatalf("questions not round-tripped: %+v", got.Questions)
	}

	// code lookup is case-insensitive
	byCode, err := store.GetTestByCode(ctx, "abcd1234")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if byCode.ID != "t1" {
		t.Fatalf("wrong test: %+v", byCode)
	}

	if _, err := store.GetTest(ctx, "nope"); err != assess.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDuplicateTestCodeRejected(t *testing.T) {
	store := openStore(t)
	seedTest(t, store)

	dup := assess.Test{ID: "t2", TestCode: "ABCD1234", Subject: "x", Instruction: "x",
		Questions: []assess.Question{{ID: "q", QuestionText: "q"}}}
	if err := store.PutTest(context.Background(), dup); err == nil {
		t.Fatal("expected unique violation on test_code")
	}
}

func TestLatestAnswerSheetByULI(t *testing.T) {
	store := openStore(t)
	seedTest(t, store)
	ctx := context.Background()

	old := assess.AnswerSheet{ID: "s1", ULI: "ABC-24-001-03907-001", TestID: "t1", SubmittedAt: 100,
		Answers: []assess.Answer{{QuestionID: "q1", SelectedOption: "q1-b"}}}
	newer := assess.AnswerSheet{ID: "s2", ULI: "ABC-24-001-03907-001", TestID: "t1", SubmittedAt: 200,
		Answers: []assess.Answer{{QuestionID: "q1", SelectedOption: "q1-a"}}}
	for _, s := range []assess.AnswerSheet{old, newer} {
		if err := store.PutAnswerSheet(ctx, s); err != nil {
			t.Fatalf("put sheet: %v", err)
		}
	}

	got, err := store.LatestAnswerSheetByULI(ctx, "ABC-24-001-03907-001")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "s2" {
		t.Fatalf("want newest sheet s2, got %s", got.ID)
	}

	if _, err := store.LatestAnswerSheetByULI(ctx, "none"); err != assess.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListAnswerSheetsNewestFirst(t *testing.T) {
	store := openStore(t)
	seedTest(t, store)
	ctx := context.Background()

	for i, id := range []string{"s1", "s2", "s3"} {
		s := assess.AnswerSheet{ID: id, ULI: "ABC-24-001-03907-001", TestID: "t1",
			SubmittedAt: int64(100 + i), Answers: []assess.Answer{{QuestionID: "q1", SelectedOption: "q1-a"}}}
		if err := store.PutAnswerSheet(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	sheets, err := store.ListAnswerSheets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 3 || sheets[0].ID != "s3" || sheets[2].ID != "s1" {
		t.Fatalf("not newest-first: %+v", sheets)
	}
}

// Sheets reference tests by convention only. Deleting a test must leave the
// learner's submissions in place, and the batch must skip them as orphans.
func TestAnswerSheetsSurviveTestDeletion(t *testing.T) {
	store := openStore(t)
	seedTest(t, store)
	ctx := context.Background()

	sheet := assess.AnswerSheet{ID: "s1", ULI: "ABC-24-001-03907-001", TestID: "t1",
		Answers: []assess.Answer{{QuestionID: "q1", SelectedOption: "q1-a"}}}
	if err := store.PutAnswerSheet(ctx, sheet); err != nil {
		t.Fatal(err)
	}
	if _, err := store.DeleteTest(ctx, "t1"); err != nil {
		t.Fatal(err)
	}

	sheets, err := store.ListAnswerSheetsByULI(ctx, sheet.ULI)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 1 {
		t.Fatalf("sheet deleted along with its test: %d", len(sheets))
	}

	created, err := scoring.NewService(store).ScoreAll(ctx)
	if err != nil {
		t.Fatalf("batch must tolerate orphaned sheets: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("orphan produced a result: %+v", created)
	}
}

func TestUpsertResultOverwritesKeepingRemarks(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := assess.Result{ULI: "ABC-24-001-03907-001", TestID: "t1", TestCode: "ABCD1234",
		Subject: "SMAW", Score: 1, TotalQuestions: 2}
	if _, err := store.UpsertResult(ctx, base); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.UpdateRemarks(ctx, base.ULI, "ABCD1234", "for retake"); err != nil {
		t.Fatalf("remarks: %v", err)
	}

	base.Score = 2
	got, err := store.UpsertResult(ctx, base)
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got.Score != 2 || got.TotalQuestions != 2 {
		t.Fatalf("score not overwritten: %+v", got)
	}
	if got.Remarks != "for retake" {
		t.Fatalf("rescore must keep remarks, got %q", got.Remarks)
	}

	all, err := store.ListResults(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("upsert created a duplicate row: %d", len(all))
	}
}

func TestRemarksIsolationAndMissingKey(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	r := assess.Result{ULI: "u", TestID: "t1", TestCode: "ABCD1234", Subject: "s", Score: 3, TotalQuestions: 5}
	if _, err := store.UpsertResult(ctx, r); err != nil {
		t.Fatal(err)
	}
	got, err := store.UpdateRemarks(ctx, "u", "ABCD1234", "passed")
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 3 || got.TotalQuestions != 5 || got.Remarks != "passed" {
		t.Fatalf("remarks update touched score fields: %+v", got)
	}

	// remarks cannot be attached before scoring
	if _, err := store.UpdateRemarks(ctx, "stranger", "ABCD1234", "x"); err != assess.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListResultsByULINewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i, tc := range []string{"AAAA1111", "BBBB2222", "CCCC3333"} {
		r := assess.Result{ULI: "u", TestID: fmt.Sprintf("t%d", i), TestCode: tc,
			Subject: "s", Score: i, TotalQuestions: 3, CreatedAt: int64(100 + i)}
		if _, err := store.UpsertResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.ListResultsByULI(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("want 3 results, got %d", len(list))
	}
	if list[0].TestCode != "CCCC3333" || list[2].TestCode != "AAAA1111" {
		t.Fatalf("not newest-first: %+v", list)
	}

	empty, err := store.ListResultsByULI(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty slice, got %d", len(empty))
	}
}

func TestDeleteResult(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	r := assess.Result{ULI: "u", TestID: "t1", TestCode: "ABCD1234", Subject: "s", Score: 1, TotalQuestions: 1}
	if _, err := store.UpsertResult(ctx, r); err != nil {
		t.Fatal(err)
	}
	deleted, err := store.DeleteResult(ctx, "u", "abcd1234")
	if err != nil {
		t.Fatal(err)
	}
	if deleted.Score != 1 {
		t.Fatalf("deleted copy wrong: %+v", deleted)
	}
	if _, err := store.GetResult(ctx, "u", "ABCD1234"); err != assess.ErrNotFound {
		t.Fatalf("row still present: %v", err)
	}
	if _, err := store.DeleteResult(ctx, "u", "ABCD1234"); err != assess.ErrNotFound {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}
