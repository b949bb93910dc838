package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillforge/skillforge-tms/internal/archive"
	"github.com/skillforge/skillforge-tms/internal/assess"
	authmw "github.com/skillforge/skillforge-tms/internal/auth/middleware"
	"github.com/skillforge/skillforge-tms/internal/scoring"
)

// GET /api/results
func ListResultsHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListResults(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// POST /api/results/calculate/{uli} — always recomputes and overwrites.
func CalculateResultHandler(svc *scoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Score(r.Context(), chi.URLParam(r, "uli"), true)
		if err != nil {
			respondNotFoundOr500(w, err, "answer sheet or test not found")
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// POST /api/results/calculate-all — scores every pending sheet; pairs that
// already have a result are left alone and not reported.
func CalculateAllResultsHandler(svc *scoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		created, err := svc.ScoreAll(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("%d result(s) calculated", len(created)),
			"results": created,
		})
	}
}

// GET /api/results/{uli}/{testCode}
func GetResultHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.GetResult(r.Context(), chi.URLParam(r, "uli"), chi.URLParam(r, "testCode"))
		if err != nil {
			respondNotFoundOr500(w, err, "result not found")
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// PATCH /api/results/{uli}/{testCode}/remarks — remarks only; score and
// total are untouched. 404 when the pair has not been scored yet.
func UpdateRemarksHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Remarks string `json:"remarks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad json")
			return
		}
		res, err := store.UpdateRemarks(r.Context(), chi.URLParam(r, "uli"), chi.URLParam(r, "testCode"), req.Remarks)
		if err != nil {
			respondNotFoundOr500(w, err, "result not found")
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// DELETE /api/results/{uli}/{testCode}
func DeleteResultHandler(store assess.Store, arc *archive.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.DeleteResult(r.Context(), chi.URLParam(r, "uli"), chi.URLParam(r, "testCode"))
		if err != nil {
			respondNotFoundOr500(w, err, "result not found")
			return
		}
		key := res.ULI + "/" + res.TestCode
		if err := arc.Keep(r.Context(), "result", key, res, authmw.SubjectFromContext(r.Context())); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondMessage(w, "result deleted")
	}
}

// POST /api/results/getuser/{uli} — newest first. An empty set is a 404 by
// contract, not an empty array.
func ListUserResultsHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListResultsByULI(r.Context(), chi.URLParam(r, "uli"))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(list) == 0 {
			respondError(w, http.StatusNotFound, "no results for learner")
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}
