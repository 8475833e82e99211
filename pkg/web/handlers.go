// Package web provides HTTP handlers and REST API endpoints for inspector session management.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/services"
)

type APIHandlers struct {
	sessionService *services.Sessions
	validator      *validator.Validate
	registry       *inspector.Registry
}

func NewAPIHandlers(
	sessionService *services.Sessions,
	validator *validator.Validate,
	registry *inspector.Registry,
) *APIHandlers {
	return &APIHandlers{
		sessionService: sessionService,
		validator:      validator,
		registry:       registry,
	}
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.sessionService.Create(c.Context(), services.CreateSessionRequest{
		Title:      req.Title,
		InstanceID: req.InstanceID,
		ClassTag:   req.ClassTag,
		Schema:     req.Schema,
		Values:     req.Values,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TransformSessionResponse(session))
}

func (h *APIHandlers) GetSessions(c fiber.Ctx) error {
	sessions := h.sessionService.List(c.Context())

	responses := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, TransformSessionResponse(session))
	}

	return c.JSON(fiber.Map{
		"sessions":    responses,
		"total_count": len(responses),
	})
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	session, err := h.sessionService.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(session))
}

func (h *APIHandlers) DeleteSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	err := h.sessionService.Dispose(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetValues extracts the session's values. With ?valid=true the extraction
// validates per property and reports the failing names separately.
func (h *APIHandlers) GetValues(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	if validStr := c.Query("valid"); validStr != "" {
		valid, err := strconv.ParseBool(validStr)
		if err != nil {
			return badRequest(c, "Invalid query parameters: "+err.Error())
		}

		if valid {
			values, invalid, err := h.sessionService.ValidValues(c.Context(), id)
			if err != nil {
				return handleServiceError(c, err)
			}

			return c.JSON(ValuesResponse{Values: values, Invalid: invalid})
		}
	}

	values, err := h.sessionService.Values(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ValuesResponse{Values: values})
}

func (h *APIHandlers) SetValue(c fiber.Ctx) error {
	id := c.Params("id")
	property := c.Params("property")

	if id == "" || property == "" {
		return badRequest(c, "Session ID and property path are required")
	}

	var req SetValueRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err := h.sessionService.SetValue(c.Context(), id, property, req.Value)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ValidateSession runs the session's validation walk. The outcome is part of
// the response body; a failing property is an expected result, not an error.
func (h *APIHandlers) ValidateSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	err := h.sessionService.Validate(c.Context(), id)
	if err != nil {
		var verr *inspector.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(ValidateResponse{
				Valid: false,
				Path:  verr.Path,
				Error: verr.Err.Error(),
			})
		}

		return handleServiceError(c, err)
	}

	return c.JSON(ValidateResponse{Valid: true})
}

// CommitSession validates the whole session and returns its extracted values
// when every property passes.
func (h *APIHandlers) CommitSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	values, err := h.sessionService.Commit(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ValuesResponse{Values: values})
}

func (h *APIHandlers) SetOverride(c fiber.Ctx) error {
	id := c.Params("id")
	property := c.Params("property")

	if id == "" || property == "" {
		return badRequest(c, "Session ID and property path are required")
	}

	var req SetOverrideRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err := h.sessionService.SetOverride(c.Context(), id, property, req.Token)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteOverride(c fiber.Ctx) error {
	id := c.Params("id")
	property := c.Params("property")

	if id == "" || property == "" {
		return badRequest(c, "Session ID and property path are required")
	}

	err := h.sessionService.ClearOverride(c.Context(), id, property)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SetGroupExpanded(c fiber.Ctx) error {
	id := c.Params("id")
	index := c.Params("index")

	if id == "" || index == "" {
		return badRequest(c, "Session ID and group index are required")
	}

	var req SetGroupExpandedRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err := h.sessionService.SetGroupExpanded(c.Context(), id, index, req.Expanded)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	storeCheck, storeOk := h.sessionService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Propsheet API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && storeOk {
		status = "healthy"
		message = "Propsheet API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":    registryCheck,
			"group_state": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
