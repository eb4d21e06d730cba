package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	domain "github.com/safeguardhq/safeguard/internal/domain/person"
	"github.com/safeguardhq/safeguard/internal/service/watchdog"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	RecordCheckIn(ctx context.Context, checkIn *watchdog.CheckIn) (*domain.Person, error)
	RunPass(ctx context.Context) (int, error)
	GetStatus(ctx context.Context, identifier string) (*watchdog.Status, error)
	Count(ctx context.Context) (int, error)
	TestAlert(ctx context.Context, contact *domain.Contact) error
}

// Handler implements the watchdog HTTP API.
type Handler struct {
	// service provides the business logic for watchdog operations.
	service Service
}

// NewHandler wires the provided service implementation into the HTTP transport.
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Register attaches the API routes to the Echo instance.
func (h *Handler) Register(e *echo.Echo) {
	group := e.Group("/api")
	group.POST("/ping", h.Ping)
	group.POST("/check-all", h.CheckAll)
	group.GET("/check-all", h.CheckAll)
	group.GET("/status/:identifier", h.Status)
	group.POST("/test-alert", h.TestAlert)

	e.GET("/health", h.Health)
}

// checkInRequest is the inbound check-in payload. The field names mirror the
// device client's settings model.
type checkInRequest struct {
	User              string                `json:"user"`
	Phone             string                `json:"phone"`
	StartTime         string                `json:"startTime"`
	EndTime           string                `json:"endTime"`
	ActiveDays        []int                 `json:"activeDays"`
	UseCustomSchedule *bool                 `json:"useCustomSchedule"`
	Schedules         map[int]domain.Window `json:"schedules"`
	VacationMode      *bool                 `json:"vacationMode"`
	Contacts          []domain.Contact      `json:"contacts"`
	Battery           *int                  `json:"battery"`
}

// Ping accepts a device check-in and refreshes the person's record.
func (h *Handler) Ping(c echo.Context) error {
	var request checkInRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	record, err := h.service.RecordCheckIn(c.Request().Context(), &watchdog.CheckIn{
		Identifier:        request.User,
		Phone:             request.Phone,
		WindowStart:       request.StartTime,
		WindowEnd:         request.EndTime,
		ActiveDays:        request.ActiveDays,
		UseCustomSchedule: request.UseCustomSchedule,
		Overrides:         request.Schedules,
		VacationMode:      request.VacationMode,
		Contacts:          request.Contacts,
		Battery:           request.Battery,
	})

	switch {
	case errors.Is(err, watchdog.ErrEmptyIdentifier):
		return echo.NewHTTPError(http.StatusBadRequest, "user is required")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to record check-in")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"identifier": record.Identifier,
	})
}

// CheckAll runs one evaluation pass. It is invoked by an external scheduler
// at a fixed interval; the pass itself is idempotent under any frequency.
func (h *Handler) CheckAll(c echo.Context) error {
	alerts, err := h.service.RunPass(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "evaluation pass failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "complete",
		"alerts": alerts,
	})
}

// Status returns the read-only liveness snapshot for one person.
func (h *Handler) Status(c echo.Context) error {
	identifier := c.Param("identifier")

	status, err := h.service.GetStatus(c.Request().Context(), identifier)

	switch {
	case errors.Is(err, watchdog.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "unknown identifier")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to read status")
	}

	return c.JSON(http.StatusOK, status)
}

// TestAlert sends a one-off probe message through the delivery provider.
func (h *Handler) TestAlert(c echo.Context) error {
	var contact domain.Contact
	if err := c.Bind(&contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.service.TestAlert(c.Request().Context(), &contact)

	switch {
	case errors.Is(err, watchdog.ErrContactNotDeliverable):
		return echo.NewHTTPError(http.StatusBadRequest, "phone and apiKey are required")
	case err != nil:
		return c.JSON(http.StatusOK, map[string]any{"status": "failed"})
	}

	return c.JSON(http.StatusOK, map[string]any{"status": "sent"})
}

// Health reports process liveness and the number of monitored persons.
func (h *Handler) Health(c echo.Context) error {
	count, err := h.service.Count(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to read record count")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":      "online",
		"serverTime":  time.Now().Format(time.RFC3339),
		"activeUsers": count,
	})
}
