// Package scoring turns answer sheets into persisted results.
package scoring

import "github.com/skillforge/skillforge-tms/internal/assess"

// Tally is the outcome of grading one answer sheet.
type Tally struct {
	Score          int
	TotalQuestions int
}

// Grade joins the sheet's answers against the test's questions by question
// id and counts selections that match the option flagged correct.
//
// Matching is fail-open: an answer referencing an unknown question id, or a
// question with no flagged-correct option, is skipped rather than treated as
// an error. TotalQuestions is the test's current question count, not the
// number of answers given.
func Grade(t assess.Test, sheet assess.AnswerSheet) Tally {
	key := answerKey(t)
	score := 0
	for _, a := range sheet.Answers {
		correct, ok := key[a.QuestionID]
		if !ok {
			continue
		}
		if a.SelectedOption == correct {
			score++
		}
	}
	return Tally{Score: score, TotalQuestions: len(t.Questions)}
}

// answerKey maps question id to the id of its correct option. Questions
// without a flagged option are left out.
func answerKey(t assess.Test) map[string]string {
	key := make(map[string]string, len(t.Questions))
	for _, q := range t.Questions {
		for _, o := range q.Options {
			if o.IsCorrect {
				key[q.ID] = o.ID
				break
			}
		}
	}
	return key
}
