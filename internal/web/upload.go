package web

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"cardlens/internal/extractor"
	"cardlens/internal/models"
	"cardlens/internal/parser"
)

// uploadResult is the per-file outcome shown after an upload. One bad file
// never blocks the rest of the batch.
type uploadResult struct {
	FileName string
	Card     string
	Period   string
	Count    int
	Err      string
}

type indexView struct {
	Statements []statementView
	Results    []uploadResult
	HasData    bool
	MaxFiles   int
}

type statementView struct {
	FileName string
	Card     string
	Issuer   string
	Period   string
	Count    int
	Total    string
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	sessionID := s.sessionID(c)

	sts, err := s.store.Statements(c.Context(), sessionID)
	if err != nil {
		slog.Error("listing statements failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("loading session failed")
	}

	return s.render(c, "index.html", s.indexData(sts, nil))
}

func (s *Server) indexData(sts []models.Statement, results []uploadResult) indexView {
	view := indexView{
		Results:  results,
		HasData:  len(sts) > 0,
		MaxFiles: s.cfg.MaxFilesPerUpload,
	}
	for _, st := range sts {
		view.Statements = append(view.Statements, statementView{
			FileName: st.FileName,
			Card:     st.Card,
			Issuer:   strings.ToUpper(string(st.Issuer)),
			Period:   st.Period,
			Count:    len(st.Transactions),
			Total:    formatINR(st.Total()),
		})
	}
	return view
}

func (s *Server) handleUpload(c *fiber.Ctx) error {
	sessionID := s.sessionID(c)

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("expected a multipart upload")
	}
	files := form.File["statements"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).SendString("no files uploaded, use form field 'statements'")
	}
	if len(files) > s.cfg.MaxFilesPerUpload {
		return c.Status(fiber.StatusBadRequest).
			SendString(fmt.Sprintf("too many files: got %d, limit is %d", len(files), s.cfg.MaxFilesPerUpload))
	}

	results := parseFiles(files)

	// Store successes in upload order so the statement list stays stable.
	for i, file := range files {
		if results[i].statement == nil {
			continue
		}
		if err := s.store.AddStatement(c.Context(), sessionID, *results[i].statement); err != nil {
			slog.Error("storing statement failed", "file", file.Filename, "error", err)
			results[i].view.Err = "could not store parsed statement"
			results[i].statement = nil
		}
	}
	s.dashCache.Delete(sessionID)

	views := make([]uploadResult, len(results))
	for i, r := range results {
		views[i] = r.view
	}

	sts, err := s.store.Statements(c.Context(), sessionID)
	if err != nil {
		slog.Error("listing statements failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("loading session failed")
	}

	return s.render(c, "index.html", s.indexData(sts, views))
}

type parseOutcome struct {
	view      uploadResult
	statement *models.Statement
}

// parseFiles extracts and parses every uploaded PDF, a few at a time. Each
// goroutine records its own outcome; errors never abort the batch.
func parseFiles(files []*multipart.FileHeader) []parseOutcome {
	results := make([]parseOutcome, len(files))

	var g errgroup.Group
	g.SetLimit(4)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			st, err := parseOne(file)
			results[i].view = uploadResult{FileName: file.Filename}
			if err != nil {
				slog.Warn("statement rejected", "file", file.Filename, "error", err)
				results[i].view.Err = err.Error()
				return nil
			}
			results[i].statement = st
			results[i].view.Card = st.Card
			results[i].view.Period = st.Period
			results[i].view.Count = len(st.Transactions)
			return nil
		})
	}
	g.Wait()

	return results
}

func parseOne(file *multipart.FileHeader) (*models.Statement, error) {
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		return nil, fmt.Errorf("only PDF files are supported")
	}

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}
	tmp.Close()

	pages, err := extractor.ExtractText(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}

	return parser.ParseStatement(pages, file.Filename)
}

func (s *Server) handleClear(c *fiber.Ctx) error {
	sessionID := s.sessionID(c)
	if err := s.store.Clear(c.Context(), sessionID); err != nil {
		slog.Error("clearing session failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("clearing session failed")
	}
	s.dashCache.Delete(sessionID)
	return c.Redirect("/", fiber.StatusSeeOther)
}
