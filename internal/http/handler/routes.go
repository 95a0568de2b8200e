package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"uploadapi/internal/http/middleware"
	"uploadapi/internal/model"
	"uploadapi/internal/presence"
	"uploadapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin; multipart handling happens in the FileUpload middleware, so
// they only ever see a normalized body.
func RegisterRoutes(app *fiber.App, db *sql.DB, userSvc service.UserService, cache *presence.Cache, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	app.Post("/users", CreateUser(userSvc))
	app.Get("/users/:id", GetUser(userSvc))
	app.Patch("/users/:id", UpdateProfileImage(userSvc))
	app.Delete("/users/:id", DeleteUser(userSvc))

	app.Post("/presence/heartbeat", Heartbeat(cache))
	app.Get("/presence/:id", GetPresence(cache))
}

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness check with no dependencies.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// CreateUser registers a user from the normalized multipart body. Any
// uploaded profileImage has already been persisted and substituted as a
// public path.
func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := middleware.NormalizedBody(c)
		if body == nil {
			return writeError(c, fiber.StatusBadRequest, "MULTIPART_REQUIRED", "expected multipart/form-data")
		}

		u := &model.User{
			FullName:     stringField(body, "fullName"),
			Email:        stringField(body, "email"),
			ProfileImage: stringField(body, "profileImage"),
		}

		created, err := svc.Create(c.UserContext(), u)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrFullNameRequired):
				return writeError(c, fiber.StatusBadRequest, "FULL_NAME_REQUIRED", "fullName is required")
			case errors.Is(err, service.ErrEmailRequired):
				return writeError(c, fiber.StatusBadRequest, "EMAIL_REQUIRED", "email is required")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// GetUser returns a user by ID.
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(u)
	}
}

// UpdateProfileImage swaps the user's profile image for the one uploaded
// with this request. The superseded file is deleted by the service.
func UpdateProfileImage(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		body := middleware.NormalizedBody(c)
		newPath := stringField(body, "profileImage")
		if newPath == "" {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "profileImage file is required")
		}

		u, err := svc.ReplaceProfileImage(c.UserContext(), id, newPath)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(u)
	}
}

// DeleteUser removes the user's stored file and record.
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type heartbeatRequest struct {
	UserID string `json:"user_id"`
}

// Heartbeat marks the calling user online for the presence TTL window.
func Heartbeat(cache *presence.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req heartbeatRequest
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return writeError(c, fiber.StatusBadRequest, "USER_ID_REQUIRED", "user_id is required")
		}
		if err := cache.Heartbeat(c.UserContext(), req.UserID); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetPresence reports whether a user is online and when they were last seen.
func GetPresence(cache *presence.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		s, err := cache.Status(c.UserContext(), id)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(s)
	}
}

func stringField(body map[string]any, key string) string {
	if body == nil {
		return ""
	}
	if s, ok := body[key].(string); ok {
		return s
	}
	return ""
}
