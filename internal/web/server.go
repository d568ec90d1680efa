// Package web serves the upload form, the spending dashboard, and the CSV
// export over HTTP. All state is keyed by a session cookie so two browsers
// never see each other's uploads.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	recoverer "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"cardlens/internal/config"
	"cardlens/internal/store"
	appweb "cardlens/web"
)

const sessionCookie = "cardlens_session"

// Server wires the HTTP routes to the statement store.
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	store     store.Store
	templates *template.Template

	dashCache *lruCache[dashboardView]
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg *config.Config, st store.Store) (*Server, error) {
	templates, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "cardlens",
		BodyLimit:             cfg.MaxUploadMB << 20,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:       app,
		cfg:       cfg,
		store:     st,
		templates: templates,
		dashCache: newLRUCache[dashboardView](500, 5*time.Minute),
	}

	app.Use(recoverer.New())
	app.Use(requestLogger())

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mounting static assets: %w", err)
	}
	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(static),
		MaxAge: 3600,
	}))

	app.Get("/healthz", handleHealth)
	app.Get("/", s.handleIndex)
	app.Post("/statements", s.handleUpload)
	// HTML forms cannot send DELETE, so clearing is exposed both ways.
	app.Post("/statements/clear", s.handleClear)
	app.Delete("/statements", s.handleClear)
	app.Get("/dashboard", s.handleDashboard)
	app.Get("/export.csv", s.handleExport)

	return s, nil
}

// Listen serves HTTP on the given address until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server, waiting at most until ctx expires.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds())
		return err
	}
}

func handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

// sessionID returns the caller's session, minting a cookie on first contact.
func (s *Server) sessionID(c *fiber.Ctx) string {
	if id := c.Cookies(sessionCookie); id != "" {
		return id
	}
	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    id,
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
	})
	return id
}

func (s *Server) render(c *fiber.Ctx, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("rendering failed")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
