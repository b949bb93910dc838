package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-tms/internal/archive"
	"github.com/skillforge/skillforge-tms/internal/assess"
	authmw "github.com/skillforge/skillforge-tms/internal/auth/middleware"
)

type optionReq struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type questionReq struct {
	QuestionText string      `json:"question_text" validate:"required"`
	Options      []optionReq `json:"options" validate:"len=4,dive"`
}

type testReq struct {
	Subject     string        `json:"subject" validate:"required"`
	Instruction string        `json:"instruction" validate:"required"`
	Questions   []questionReq `json:"questions" validate:"min=1,dive"`
}

func (req testReq) toQuestions() []assess.Question {
	qs := make([]assess.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		opts := make([]assess.Option, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, assess.Option{ID: uuid.NewString(), Text: o.Text, IsCorrect: o.IsCorrect})
		}
		qs = append(qs, assess.Question{ID: uuid.NewString(), QuestionText: q.QuestionText, Options: opts})
	}
	return qs
}

// POST /api/tests
func CreateTestHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req testReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		code, err := assess.NewTestCode()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		t := assess.Test{
			ID:          uuid.NewString(),
			TestCode:    code,
			Subject:     req.Subject,
			Instruction: req.Instruction,
			Questions:   req.toQuestions(),
		}
		if err := store.PutTest(r.Context(), t); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusCreated, t)
	}
}

// GET /api/tests/{id}
func GetTestHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondNotFoundOr500(w, err, "test not found")
			return
		}
		respondJSON(w, http.StatusOK, t)
	}
}

// GET /api/tests/code/{testCode} — lookup is case-insensitive.
func GetTestByCodeHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTestByCode(r.Context(), chi.URLParam(r, "testCode"))
		if err != nil {
			respondNotFoundOr500(w, err, "test not found")
			return
		}
		respondJSON(w, http.StatusOK, t)
	}
}

// GET /api/tests?q=&limit=&offset=
func ListTestsHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListTests(r.Context(), assess.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// PUT /api/tests/{id} — whole-document replacement; the test code and id
// are immutable. Editing a test after sheets exist is allowed and silently
// shifts later rescores, matching registry practice.
func UpdateTestHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		existing, err := store.GetTest(r.Context(), id)
		if err != nil {
			respondNotFoundOr500(w, err, "test not found")
			return
		}
		var req testReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		existing.Subject = req.Subject
		existing.Instruction = req.Instruction
		existing.Questions = req.toQuestions()
		if err := store.PutTest(r.Context(), existing); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, existing)
	}
}

// DELETE /api/tests/{id} — a copy goes to the archive before the row is
// removed.
func DeleteTestHandler(store assess.Store, arc *archive.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.DeleteTest(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondNotFoundOr500(w, err, "test not found")
			return
		}
		if err := arc.Keep(r.Context(), "test", t.TestCode, t, authmw.SubjectFromContext(r.Context())); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondMessage(w, "test deleted")
	}
}

func respondNotFoundOr500(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, assess.ErrNotFound) {
		respondError(w, http.StatusNotFound, msg)
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
