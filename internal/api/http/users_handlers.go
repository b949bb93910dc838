package http

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/skillforge/skillforge-tms/internal/auth/middleware"
	"github.com/skillforge/skillforge-tms/internal/refdata"
)

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`               // trainee|staff|admin
	Password string `json:"password,omitempty"` // required for new accounts

	// Registry roster columns, optional. Free-form intake spellings are
	// normalized through refdata; unknown values reject the batch.
	CivilStatus string `json:"civil_status,omitempty"`
	Attainment  string `json:"educational_attainment,omitempty"`
}

// POST /api/users/bulk — accepts a JSON array body or a multipart file=
// upload holding CSV or JSON. Rosters usually arrive as CSV exports.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				respondError(w, http.StatusBadRequest, "file required")
				return
			}
			defer f.Close()
			buf := make([]byte, 1)
			if _, err := f.Read(buf); err != nil {
				respondError(w, http.StatusBadRequest, "empty file")
				return
			}
			if seeker, ok := f.(io.Seeker); ok {
				_, _ = seeker.Seek(0, io.SeekStart)
			}
			if buf[0] == '[' || buf[0] == '{' {
				if err := json.NewDecoder(f).Decode(&rows); err != nil {
					respondError(w, http.StatusBadRequest, "bad json")
					return
				}
			} else {
				rs, err := parseUserCSV(f)
				if err != nil {
					respondError(w, http.StatusBadRequest, "bad csv: "+err.Error())
					return
				}
				rows = rs
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
				respondError(w, http.StatusBadRequest, "expected JSON array or multipart file")
				return
			}
		}
		if len(rows) == 0 {
			respondJSON(w, http.StatusOK, map[string]int{"inserted": 0, "updated": 0})
			return
		}

		ins, upd, err := upsertUsers(r.Context(), db, rows)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]int{"inserted": ins, "updated": upd})
	}
}

// GET /api/users?role=
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var rows *sql.Rows
		var err error
		if role == "" {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id,username,role,civil_status,educational_attainment FROM users ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id,username,role,civil_status,educational_attainment FROM users WHERE role=$1 ORDER BY username`, role)
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()
		out := []userRow{}
		for rows.Next() {
			var u userRow
			if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.CivilStatus, &u.Attainment); err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			out = append(out, u)
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// POST /api/users/change-password
func ChangePasswordHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.NewPassword == "" {
			respondError(w, http.StatusBadRequest, "new password required")
			return
		}

		var storedHash string
		err := db.QueryRowContext(r.Context(), `SELECT password_hash FROM users WHERE id=$1`, userID).Scan(&storedHash)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusNotFound, "user not found")
				return
			}
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.OldPassword)) != nil {
			respondError(w, http.StatusForbidden, "incorrect old password")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := db.ExecContext(r.Context(), `UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), userID); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseUserCSV(r io.Reader) ([]userRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"username", "role"} {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("missing column: " + k)
		}
	}
	var rows []userRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := userRow{
			Username: rec[idx["username"]],
			Role:     strings.ToLower(rec[idx["role"]]),
		}
		if i, ok := idx["id"]; ok {
			row.ID = rec[i]
		}
		if i, ok := idx["password"]; ok {
			row.Password = rec[i]
		}
		if i, ok := idx["civil_status"]; ok {
			row.CivilStatus = rec[i]
		}
		if i, ok := idx["educational_attainment"]; ok {
			row.Attainment = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func upsertUsers(ctx context.Context, db *sql.DB, rows []userRow) (inserted, updated int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	now := time.Now().Unix()
	for _, u := range rows {
		if u.Role == "" {
			u.Role = "trainee"
		}
		if u.Role != "trainee" && u.Role != "staff" && u.Role != "admin" {
			return inserted, updated, errors.New("invalid role: " + u.Role)
		}
		if u.CivilStatus != "" {
			cs, e := refdata.ParseCivilStatus(u.CivilStatus)
			if e != nil {
				return inserted, updated, e
			}
			u.CivilStatus = string(cs)
		}
		if u.Attainment != "" {
			ea, e := refdata.ParseEducationalAttainment(u.Attainment)
			if e != nil {
				return inserted, updated, e
			}
			u.Attainment = string(ea)
		}
		var phash string
		if u.Password != "" {
			b, e := bcrypt.GenerateFromPassword([]byte(u.Password), 12)
			if e != nil {
				return inserted, updated, e
			}
			phash = string(b)
		}

		var existingID string
		err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id=$1 OR username=$2`, u.ID, u.Username).Scan(&existingID)
		switch {
		case err == nil:
			if phash != "" {
				_, err = tx.ExecContext(ctx,
					`UPDATE users SET username=$1, role=$2, civil_status=$3, educational_attainment=$4, password_hash=$5 WHERE id=$6`,
					u.Username, u.Role, u.CivilStatus, u.Attainment, phash, existingID)
			} else {
				_, err = tx.ExecContext(ctx,
					`UPDATE users SET username=$1, role=$2, civil_status=$3, educational_attainment=$4 WHERE id=$5`,
					u.Username, u.Role, u.CivilStatus, u.Attainment, existingID)
			}
			if err != nil {
				return inserted, updated, err
			}
			updated++
		case errors.Is(err, sql.ErrNoRows):
			if phash == "" {
				return inserted, updated, errors.New("password required for new user: " + u.Username)
			}
			id := u.ID
			if id == "" {
				id = uuid.NewString()
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO users (id, username, password_hash, role, civil_status, educational_attainment, created_at)
				 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				id, u.Username, phash, u.Role, u.CivilStatus, u.Attainment, now)
			if err != nil {
				return inserted, updated, err
			}
			inserted++
		default:
			return inserted, updated, err
		}
	}
	return
}
