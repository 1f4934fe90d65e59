package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func doCSVImport(t *testing.T, srv *Server, csvBody string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestImportCSV(t *testing.T) {
	srv := newTestServer(t, Options{})

	body := strings.Join([]string{
		"date,amount,description,category,is_income",
		"2025-06-01,450.50,Lunch at cafe,Food & Dining,false",
		"2025-06-02,50000,Salary,Income,true",
		"2025-06-03,120,Auto rickshaw,unknown_cat,false",
	}, "\n")

	rec := doCSVImport(t, srv, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var result importResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Imported != 3 {
		t.Errorf("imported = %d, want 3", result.Imported)
	}
	if result.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", result.Skipped)
	}

	list := doJSON(t, srv, http.MethodGet, "/api/transactions?category=Other", nil)
	var got struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 1 {
		t.Errorf("unknown category rows in other = %d, want 1", got.Count)
	}
}

func TestImportCSVBadRows(t *testing.T) {
	srv := newTestServer(t, Options{})

	body := strings.Join([]string{
		"date,amount,description",
		"2025-06-01,100,Valid row",
		"not-a-date,100,Bad date",
		"2025-06-03,0,Zero amount",
		"2025-06-04,100,",
	}, "\n")

	rec := doCSVImport(t, srv, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var result importResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Imported != 1 {
		t.Errorf("imported = %d, want 1", result.Imported)
	}
	if result.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", result.Skipped)
	}
	for _, msg := range result.Errors {
		if !strings.HasPrefix(msg, "row ") {
			t.Errorf("error without row number: %q", msg)
		}
	}
	if len(result.Errors) != 3 {
		t.Errorf("errors = %d, want 3", len(result.Errors))
	}
}

func TestImportCSVErrorCap(t *testing.T) {
	srv := newTestServer(t, Options{})

	lines := []string{"date,amount,description"}
	for i := 0; i < 15; i++ {
		lines = append(lines, "bad-date,100,Broken row")
	}
	rec := doCSVImport(t, srv, strings.Join(lines, "\n"))

	var result importResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 15 {
		t.Errorf("skipped = %d, want 15", result.Skipped)
	}
	if len(result.Errors) != maxImportErrors {
		t.Errorf("errors = %d, want cap %d", len(result.Errors), maxImportErrors)
	}
}

func TestImportCSVMissingHeader(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := doCSVImport(t, srv, "date,description\n2025-06-01,No amount column")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestImportCSVMultipart(t *testing.T) {
	srv := newTestServer(t, Options{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "transactions.csv")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("date,amount,description\n2025-06-01,250,Uploaded row\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var result importResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Imported != 1 {
		t.Errorf("imported = %d, want 1", result.Imported)
	}
}
