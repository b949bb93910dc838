package assess

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

type Question struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []Option `json:"options"` // exactly 4, enforced at write time
}

type Test struct {
	ID          string     `json:"id"`
	TestCode    string     `json:"test_code"`
	Subject     string     `json:"subject"`
	Instruction string     `json:"instruction"`
	Questions   []Question `json:"questions"`
	CreatedAt   int64      `json:"created_at,omitempty"`
}

// Answer is one selection on an answer sheet: both ids point into the
// referenced test's embedded question/option documents.
type Answer struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

type AnswerSheet struct {
	ID          string   `json:"id"`
	ULI         string   `json:"uli"`
	TestID      string   `json:"test_id"`
	Answers     []Answer `json:"answers"`
	SubmittedAt int64    `json:"submitted_at"`
}

// Result is the materialized scoring record, at most one per (uli, test).
// TestCode and Subject are denormalized at scoring time so the row survives
// later test edits or deletion.
type Result struct {
	ULI            string `json:"uli"`
	TestID         string `json:"test_id"`
	TestCode       string `json:"test_code"`
	Subject        string `json:"subject"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	Remarks        string `json:"remarks"`
	CreatedAt      int64  `json:"created_at"`
}
