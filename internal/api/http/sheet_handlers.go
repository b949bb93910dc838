package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-tms/internal/assess"
	"github.com/skillforge/skillforge-tms/internal/intake"
)

type answerReq struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedOption string `json:"selected_option" validate:"required"`
}

type sheetReq struct {
	ULI     string      `json:"uli" validate:"required"`
	TestID  string      `json:"test_id" validate:"required"`
	Answers []answerReq `json:"answers" validate:"min=1,dive"`
}

// POST /api/answersheets — one row per attempt, immutable after creation.
func CreateAnswerSheetHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sheetReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		uli, err := intake.ParseULI(req.ULI)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := store.GetTest(r.Context(), req.TestID); err != nil {
			respondNotFoundOr500(w, err, "test not found")
			return
		}
		answers := make([]assess.Answer, 0, len(req.Answers))
		for _, a := range req.Answers {
			answers = append(answers, assess.Answer{QuestionID: a.QuestionID, SelectedOption: a.SelectedOption})
		}
		sheet := assess.AnswerSheet{
			ID:      uuid.NewString(),
			ULI:     uli.String(),
			TestID:  req.TestID,
			Answers: answers,
		}
		if err := store.PutAnswerSheet(r.Context(), sheet); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusCreated, sheet)
	}
}

// GET /api/answersheets/{uli} — the learner's submissions, newest first.
func ListAnswerSheetsByULIHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sheets, err := store.ListAnswerSheetsByULI(r.Context(), chi.URLParam(r, "uli"))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, sheets)
	}
}
