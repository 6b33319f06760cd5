package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowpad/flowpad/pkg/persistence"
	"github.com/flowpad/flowpad/pkg/services"
)

// APIHandlers exposes the definition CRUD endpoints consumed by the editor's
// persistence client.
type APIHandlers struct {
	definitionService *services.Definition
	validator         *validator.Validate
}

func NewAPIHandlers(definitionService *services.Definition, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		definitionService: definitionService,
		validator:         validator,
	}
}

// Register mounts the definition routes on the app.
func (h *APIHandlers) Register(app *fiber.App) {
	definitions := app.Group("/definitions")
	definitions.Get("/", h.ListDefinitions)
	definitions.Post("/", h.CreateDefinition)
	definitions.Get("/:id", h.GetDefinition)
	definitions.Put("/:id", h.UpdateDefinition)
	definitions.Delete("/:id", h.DeleteDefinition)

	app.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) ListDefinitions(c fiber.Ctx) error {
	definitions, err := h.definitionService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ListDefinitionsResponse{Definitions: definitions})
}

func (h *APIHandlers) GetDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Definition ID is required")
	}

	def, err := h.definitionService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsDefinitionNotFound(err) {
			return notFound(c, "definition not found")
		}

		return internalError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) CreateDefinition(c fiber.Ctx) error {
	var req SaveDefinitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.definitionService.Create(c.Context(), req.toModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Definition ID is required")
	}

	var req SaveDefinitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.definitionService.Update(c.Context(), id, req.toModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Definition ID is required")
	}

	err := h.definitionService.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsDefinitionNotFound(err) {
			return notFound(c, "definition not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.definitionService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
