package server

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/dropd/internal/model"
	"github.com/example/dropd/internal/service"
	"github.com/example/dropd/internal/storage"
)

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	filter := storage.TaskListFilter{
		Category: c.Query("category"),
	}
	if active, err := strconv.ParseBool(c.Query("active", "false")); err == nil {
		filter.ActiveOnly = active
	}
	filter.Limit = c.QueryInt("limit")
	filter.Offset = c.QueryInt("offset")

	tasks, err := s.svc.List(c.UserContext(), filter)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(toTaskResponses(tasks))
}

func (s *Server) createTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	in := service.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Interval:    model.Interval(req.Interval),
		Steps:       toStepInputs(req.Steps),
		Category:    req.Category,
		Priority:    model.Priority(req.Priority),
		Color:       req.Color,
	}
	if req.Interval == "" {
		in.Interval = model.IntervalDaily
	}
	if req.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if req.DueHour != nil {
		clock := model.ClockTime{Hour: *req.DueHour}
		if req.DueMinute != nil {
			clock.Minute = *req.DueMinute
		}
		in.DueClock = &clock
	}

	task, err := s.svc.Create(c.UserContext(), in)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(task))
}

func (s *Server) getTask(c *fiber.Ctx) error {
	task, err := s.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(toTaskResponse(task))
}

func (s *Server) editTask(c *fiber.Ctx) error {
	var req editTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	in := service.EditInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
	}
	if req.Interval != nil {
		interval := model.Interval(*req.Interval)
		in.Interval = &interval
	}
	if req.Priority != nil {
		priority := model.Priority(*req.Priority)
		in.Priority = &priority
	}
	if req.Steps != nil {
		steps := toStepInputs(*req.Steps)
		in.Steps = &steps
	}

	task, err := s.svc.Edit(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(toTaskResponse(task))
}

func (s *Server) deleteTask(c *fiber.Ctx) error {
	if err := s.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return s.serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) completeTask(c *fiber.Ctx) error {
	task, err := s.svc.Complete(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(toTaskResponse(task))
}

func (s *Server) toggleTask(c *fiber.Ctx) error {
	task, err := s.svc.ToggleActive(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(toTaskResponse(task))
}

func (s *Server) getStats(c *fiber.Ctx) error {
	summary, err := s.svc.Stats(c.UserContext())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(toStatsResponse(summary))
}

func (s *Server) exportTasks(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.svc.ExportTasks(c.UserContext(), &buf); err != nil {
		return s.serviceError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="dropd-tasks.json"`)
	return c.Send(buf.Bytes())
}

func (s *Server) importTasks(c *fiber.Ctx) error {
	imported, skipped, err := s.svc.ImportTasks(c.UserContext(), bytes.NewReader(c.Body()))
	if err != nil {
		return badRequest(c, "invalid import payload")
	}
	return c.JSON(importResponse{Imported: imported, Skipped: skipped})
}

func (s *Server) getSettings(c *fiber.Ctx) error {
	cfg := s.svc.Settings()
	return c.JSON(settingsResponse{
		NotificationsEnabled: cfg.NotificationsEnabled,
		Theme:                cfg.Theme,
	})
}

func (s *Server) setNotifications(c *fiber.Ctx) error {
	var req notificationsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.svc.SetNotificationsEnabled(c.UserContext(), req.Enabled); err != nil {
		return s.serviceError(c, err)
	}
	return s.getSettings(c)
}

func (s *Server) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{
			Error:   "not_found",
			Message: "task not found",
		})
	case errors.Is(err, service.ErrInvalidInput):
		return badRequest(c, err.Error())
	}
	s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
		Error:   "internal_error",
		Message: "something went wrong",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
		Error:   "validation_error",
		Message: message,
	})
}
