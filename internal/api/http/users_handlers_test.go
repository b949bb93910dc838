package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/skillforge/skillforge-tms/internal/api/http"
	"github.com/skillforge/skillforge-tms/internal/db"

	_ "modernc.org/sqlite" // driver for "sqlite"
)

func newUsersServer(t *testing.T) *httptest.Server {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:users_test_%d.db?mode=memory&cache=shared", dbSeq)
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })

	r := chi.NewRouter()
	r.Post("/api/users/bulk", api.BulkUpsertUsersHandler(dbh))
	r.Get("/api/users", api.ListUsersHandler(dbh))
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

type listedUser struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	CivilStatus string `json:"civil_status"`
	Attainment  string `json:"educational_attainment"`
}

func TestBulkUpsertUsers_NormalizesRosterColumns(t *testing.T) {
	ts := newUsersServer(t)

	body := `[{"username":"ana","role":"trainee","password":"pw123456",
		"civil_status":"Widow","educational_attainment":"High School Graduate"}]`
	status, resp := doReq(t, "POST", ts.URL+"/api/users/bulk", body)
	if status != http.StatusOK {
		t.Fatalf("bulk: %d %s", status, resp)
	}

	status, resp = doReq(t, "GET", ts.URL+"/api/users", "")
	if status != http.StatusOK {
		t.Fatalf("list: %d", status)
	}
	var users []listedUser
	if err := json.Unmarshal(resp, &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("want 1 user, got %d", len(users))
	}
	if users[0].CivilStatus != "widowed" || users[0].Attainment != "high-school" {
		t.Fatalf("roster columns not normalized: %+v", users[0])
	}
}

func TestBulkUpsertUsers_RejectsUnknownCivilStatus(t *testing.T) {
	ts := newUsersServer(t)

	body := `[{"username":"ana","role":"trainee","password":"pw123456","civil_status":"complicated"}]`
	status, _ := doReq(t, "POST", ts.URL+"/api/users/bulk", body)
	if status == http.StatusOK {
		t.Fatal("unknown civil status must reject the batch")
	}

	// the whole batch rolls back
	status, resp := doReq(t, "GET", ts.URL+"/api/users", "")
	if status != http.StatusOK {
		t.Fatalf("list: %d", status)
	}
	var users []listedUser
	if err := json.Unmarshal(resp, &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 0 {
		t.Fatalf("rejected batch left rows behind: %+v", users)
	}
}

func TestBulkUpsertUsers_CSVRoster(t *testing.T) {
	ts := newUsersServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "roster.csv")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, "username,role,password,civil_status,educational_attainment\n")
	fmt.Fprint(fw, "ben,trainee,pw123456,Married,tvet\n")
	_ = mw.Close()

	req, err := http.NewRequest("POST", ts.URL+"/api/users/bulk", &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("csv upload: %d", resp.StatusCode)
	}

	status, body := doReq(t, "GET", ts.URL+"/api/users", "")
	if status != http.StatusOK {
		t.Fatalf("list: %d", status)
	}
	var users []listedUser
	if err := json.Unmarshal(body, &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].CivilStatus != "married" || users[0].Attainment != "vocational" {
		t.Fatalf("csv roster not normalized: %+v", users)
	}
}
