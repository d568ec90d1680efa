package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"cardlens/internal/config"
	"cardlens/internal/models"
	"cardlens/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		StoreBackend:      "memory",
		MaxUploadMB:       8,
		MaxFilesPerUpload: 3,
		SessionTTL:        time.Hour,
		TopMerchants:      5,
	}
}

func sessionCookieFor(id string) *http.Cookie {
	return &http.Cookie{Name: sessionCookie, Value: id}
}

func setupTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st := store.NewMemory(time.Hour)
	t.Cleanup(func() { st.Close() })

	s, err := NewServer(testConfig(), st)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s, st
}

func seedSession(t *testing.T, st store.Store, sessionID string) {
	t.Helper()
	err := st.AddStatement(context.Background(), sessionID, models.Statement{
		ID:       "st-1",
		Card:     "Axis Flipkart",
		Issuer:   models.IssuerAxis,
		FileName: "axis.pdf",
		Period:   "01 Dec 25 to 31 Dec 25",
		Transactions: []models.Transaction{
			{
				Date:      time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC),
				Merchant:  "SWIGGY INSTAMART",
				Amount:    decimal.RequireFromString("450.00"),
				Category:  "Groceries",
				Issuer:    models.IssuerAxis,
				Card:      "Axis Flipkart",
				Statement: "st-1",
			},
			{
				Date:      time.Date(2025, 12, 12, 0, 0, 0, 0, time.UTC),
				Merchant:  "UBER INDIA",
				Amount:    decimal.RequireFromString("250.00"),
				Category:  "Transport",
				Issuer:    models.IssuerAxis,
				Card:      "Axis Flipkart",
				Statement: "st-1",
			},
		},
	})
	if err != nil {
		t.Fatalf("seeding store failed: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
}

func TestIndexSetsSessionCookie(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie on first contact")
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Upload statements") {
		t.Error("expected upload form on index page")
	}
}

func TestUploadRequiresFiles(t *testing.T) {
	s, _ := setupTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest("POST", "/statements", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for empty upload, got %d", resp.StatusCode)
	}
}

func TestUploadRejectsBadFileButSucceeds(t *testing.T) {
	s, _ := setupTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("statements", "garbage.pdf")
	if err != nil {
		t.Fatalf("building multipart body: %v", err)
	}
	fw.Write([]byte("this is not a pdf"))
	mw.Close()

	req := httptest.NewRequest("POST", "/statements", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := s.App().Test(req, 10000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	// Best effort: a broken file reports its error, the page still renders.
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "garbage.pdf") {
		t.Error("expected per-file result naming the failed file")
	}
}

func TestUploadRejectsNonPDFExtension(t *testing.T) {
	s, _ := setupTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("statements", "notes.txt")
	fw.Write([]byte("hello"))
	mw.Close()

	req := httptest.NewRequest("POST", "/statements", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := s.App().Test(req, 10000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "only PDF files are supported") {
		t.Error("expected a PDF-only rejection for the file")
	}
}

func TestUploadTooManyFiles(t *testing.T) {
	s, _ := setupTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		fw, _ := mw.CreateFormFile("statements", name)
		fw.Write([]byte("x"))
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/statements", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for too many files, got %d", resp.StatusCode)
	}
}

func TestDashboardEmptySession(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "No statements yet") {
		t.Error("expected empty-state message")
	}
}

func TestDashboardWithData(t *testing.T) {
	s, st := setupTestServer(t)
	seedSession(t, st, "sess-dash")

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(sessionCookieFor("sess-dash"))
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	for _, want := range []string{
		"₹700.00",          // total spend
		"SWIGGY INSTAMART", // top merchant
		"Groceries",        // category breakdown
		"Axis Flipkart",    // card pie legend
		"Dec 25",           // monthly trend
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestExportCSV(t *testing.T) {
	s, st := setupTestServer(t)
	seedSession(t, st, "sess-export")

	req := httptest.NewRequest("GET", "/export.csv", nil)
	req.AddCookie(sessionCookieFor("sess-export"))
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("expected text/csv content type, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}

	body, _ := io.ReadAll(resp.Body)
	csv := string(body)
	if !strings.Contains(csv, "Date,Merchant,Amount,Category,Issuer,Card,Statement") {
		t.Error("expected CSV header row")
	}
	if !strings.Contains(csv, "UBER INDIA") {
		t.Error("expected transaction rows in export")
	}
}

func TestExportEmptySession(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/export.csv", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for empty export, got %d", resp.StatusCode)
	}
}

func TestClearSession(t *testing.T) {
	s, st := setupTestServer(t)
	seedSession(t, st, "sess-clear")

	req := httptest.NewRequest("POST", "/statements/clear", nil)
	req.AddCookie(sessionCookieFor("sess-clear"))
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", resp.StatusCode)
	}

	txns, err := st.Transactions(context.Background(), "sess-clear")
	if err != nil {
		t.Fatalf("listing transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("expected cleared session, got %d rows", len(txns))
	}
}

// Upload invalidates the cached dashboard so new rows appear immediately.
func TestDashboardCacheInvalidation(t *testing.T) {
	s, st := setupTestServer(t)
	seedSession(t, st, "sess-cache")

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(sessionCookieFor("sess-cache"))
	if _, err := s.App().Test(req); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, ok := s.dashCache.Get("sess-cache"); !ok {
		t.Fatal("expected dashboard to be cached after first view")
	}

	s.dashCache.Delete("sess-cache")
	if _, ok := s.dashCache.Get("sess-cache"); ok {
		t.Error("expected cache entry to be gone after invalidation")
	}
}
