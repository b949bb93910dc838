package assess

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutTest(ctx context.Context, t Test) error {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tests (id,test_code,subject,instruction,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET subject=EXCLUDED.subject, instruction=EXCLUDED.instruction, questions_json=EXCLUDED.questions_json`,
		t.ID, t.TestCode, t.Subject, t.Instruction, string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	return s.scanTest(s.db.QueryRowContext(ctx,
		`SELECT id,test_code,subject,instruction,questions_json,created_at FROM tests WHERE id=$1`, id))
}

func (s *SQLStore) GetTestByCode(ctx context.Context, code string) (Test, error) {
	return s.scanTest(s.db.QueryRowContext(ctx,
		`SELECT id,test_code,subject,instruction,questions_json,created_at FROM tests WHERE test_code=$1`,
		NormalizeTestCode(code)))
}

func (s *SQLStore) scanTest(row *sql.Row) (Test, error) {
	var t Test
	var qjson string
	if err := row.Scan(&t.ID, &t.TestCode, &t.Subject, &t.Instruction, &qjson, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrNotFound
		}
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) ListTests(ctx context.Context, opts ListOpts) ([]Test, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,test_code,subject,instruction,questions_json,created_at FROM tests
		 WHERE ($1 = '' OR subject LIKE '%' || $1 || '%')
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		opts.Q, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Test{}
	for rows.Next() {
		var t Test
		var qjson string
		if err := rows.Scan(&t.ID, &t.TestCode, &t.Subject, &t.Instruction, &qjson, &t.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTest removes the row and returns the deleted test so callers can
// archive a copy.
func (s *SQLStore) DeleteTest(ctx context.Context, id string) (Test, error) {
	t, err := s.GetTest(ctx, id)
	if err != nil {
		return Test{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tests WHERE id=$1`, id); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) PutAnswerSheet(ctx context.Context, sheet AnswerSheet) error {
	aj, err := json.Marshal(sheet.Answers)
	if err != nil {
		return err
	}
	if sheet.SubmittedAt == 0 {
		sheet.SubmittedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO answer_sheets (id,uli,test_id,answers_json,submitted_at)
		VALUES ($1,$2,$3,$4,$5)`,
		sheet.ID, sheet.ULI, sheet.TestID, string(aj), sheet.SubmittedAt)
	return err
}

func (s *SQLStore) LatestAnswerSheetByULI(ctx context.Context, uli string) (AnswerSheet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,uli,test_id,answers_json,submitted_at FROM answer_sheets
		 WHERE uli=$1 ORDER BY submitted_at DESC LIMIT 1`, uli)
	return scanSheet(row.Scan)
}

// ListAnswerSheets returns every sheet newest-first, so batch scoring sees
// a learner's latest submission for a test before any earlier ones.
func (s *SQLStore) ListAnswerSheets(ctx context.Context) ([]AnswerSheet, error) {
	return s.querySheets(ctx,
		`SELECT id,uli,test_id,answers_json,submitted_at FROM answer_sheets ORDER BY submitted_at DESC`)
}

func (s *SQLStore) ListAnswerSheetsByULI(ctx context.Context, uli string) ([]AnswerSheet, error) {
	return s.querySheets(ctx,
		`SELECT id,uli,test_id,answers_json,submitted_at FROM answer_sheets
		 WHERE uli=$1 ORDER BY submitted_at DESC`, uli)
}

func (s *SQLStore) querySheets(ctx context.Context, q string, args ...any) ([]AnswerSheet, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AnswerSheet{}
	for rows.Next() {
		sheet, err := scanSheet(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sheet)
	}
	return out, rows.Err()
}

func scanSheet(scan func(...any) error) (AnswerSheet, error) {
	var sheet AnswerSheet
	var ajson string
	if err := scan(&sheet.ID, &sheet.ULI, &sheet.TestID, &ajson, &sheet.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnswerSheet{}, ErrNotFound
		}
		return AnswerSheet{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &sheet.Answers); err != nil {
		return AnswerSheet{}, err
	}
	return sheet, nil
}

// UpsertResult inserts the result or, when a row already exists for
// (uli, test_id), overwrites its score/total and refreshed denormalized
// fields. Remarks are left untouched on rescore.
func (s *SQLStore) UpsertResult(ctx context.Context, r Result) (Result, error) {
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO results (uli,test_id,test_code,subject,score,total_questions,remarks,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (uli,test_id) DO UPDATE SET
		  test_code=EXCLUDED.test_code, subject=EXCLUDED.subject,
		  score=EXCLUDED.score, total_questions=EXCLUDED.total_questions`,
		r.ULI, r.TestID, r.TestCode, r.Subject, r.Score, r.TotalQuestions, r.Remarks, r.CreatedAt)
	if err != nil {
		return Result{}, err
	}
	return s.GetResult(ctx, r.ULI, r.TestCode)
}

func (s *SQLStore) GetResult(ctx context.Context, uli, testCode string) (Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT uli,test_id,test_code,subject,score,total_questions,remarks,created_at
		 FROM results WHERE uli=$1 AND test_code=$2`, uli, NormalizeTestCode(testCode))
	return scanResult(row.Scan)
}

func (s *SQLStore) HasResult(ctx context.Context, uli, testID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM results WHERE uli=$1 AND test_id=$2`, uli, testID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) ListResults(ctx context.Context) ([]Result, error) {
	return s.queryResults(ctx,
		`SELECT uli,test_id,test_code,subject,score,total_questions,remarks,created_at
		 FROM results ORDER BY created_at DESC`)
}

func (s *SQLStore) ListResultsByULI(ctx context.Context, uli string) ([]Result, error) {
	return s.queryResults(ctx,
		`SELECT uli,test_id,test_code,subject,score,total_questions,remarks,created_at
		 FROM results WHERE uli=$1 ORDER BY created_at DESC`, uli)
}

func (s *SQLStore) queryResults(ctx context.Context, q string, args ...any) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		r, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanResult(scan func(...any) error) (Result, error) {
	var r Result
	if err := scan(&r.ULI, &r.TestID, &r.TestCode, &r.Subject, &r.Score, &r.TotalQuestions, &r.Remarks, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrNotFound
		}
		return Result{}, err
	}
	return r, nil
}

// UpdateRemarks touches only the remarks column. Remarks cannot be attached
// before scoring: a missing row is ErrNotFound, never an insert.
func (s *SQLStore) UpdateRemarks(ctx context.Context, uli, testCode, remarks string) (Result, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE results SET remarks=$1 WHERE uli=$2 AND test_code=$3`,
		remarks, uli, NormalizeTestCode(testCode))
	if err != nil {
		return Result{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Result{}, ErrNotFound
	}
	return s.GetResult(ctx, uli, testCode)
}

func (s *SQLStore) DeleteResult(ctx context.Context, uli, testCode string) (Result, error) {
	r, err := s.GetResult(ctx, uli, testCode)
	if err != nil {
		return Result{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM results WHERE uli=$1 AND test_id=$2`, r.ULI, r.TestID); err != nil {
		return Result{}, err
	}
	return r, nil
}
