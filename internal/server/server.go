package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/example/dropd/internal/service"
)

// Server exposes the task lifecycle over HTTP for the web surface. It is a
// thin caller: all semantics live in the service layer.
type Server struct {
	app *fiber.App
	svc *service.TaskService
	log zerolog.Logger
}

func New(svc *service.TaskService, log zerolog.Logger) *Server {
	s := &Server{
		svc: svc,
		log: log,
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger())
	s.routes()
	return s
}

// App returns the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("http server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.health)

	api := s.app.Group("/api/v1")
	api.Get("/tasks", s.listTasks)
	api.Post("/tasks", s.createTask)
	api.Get("/tasks/:id", s.getTask)
	api.Patch("/tasks/:id", s.editTask)
	api.Delete("/tasks/:id", s.deleteTask)
	api.Post("/tasks/:id/complete", s.completeTask)
	api.Post("/tasks/:id/toggle", s.toggleTask)
	api.Get("/stats", s.getStats)
	api.Get("/export", s.exportTasks)
	api.Post("/import", s.importTasks)
	api.Get("/settings", s.getSettings)
	api.Put("/settings/notifications", s.setNotifications)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	return c.Status(code).JSON(errorResponse{Error: "server_error", Message: message})
}
