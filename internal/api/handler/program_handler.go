package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
	"github.com/clinicdesk/health-records/internal/pkg/metrics"
)

// ProgramHandler handles HTTP requests for health programs.
type ProgramHandler struct {
	service ports.ProgramService
}

func NewProgramHandler(service ports.ProgramService) *ProgramHandler {
	return &ProgramHandler{service: service}
}

// Create adds a program.
//
// @Summary      Create program
// @Tags         programs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProgramRequest  true  "Program details"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/programs [post]
func (h *ProgramHandler) Create(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}

	var req createProgramRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	program, err := h.service.Create(c.Request().Context(), ports.ProgramInput{
		Name:        req.Name,
		Description: req.Description,
		Actor:       who,
	})
	if err != nil {
		return err
	}
	metrics.ProgramsCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, createdResponse{ID: program.ID, Message: "Program created"})
}

// Update changes the supplied fields of a program.
//
// @Summary      Update program
// @Tags         programs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Program ID"
// @Param        body  body      updateProgramRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/programs/{id} [put]
func (h *ProgramHandler) Update(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}

	id, err := programID(c.Param("id"))
	if err != nil {
		return err
	}

	var req updateProgramRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	_, err = h.service.Update(c.Request().Context(), id, ports.ProgramUpdate{
		Name:        req.Name,
		Description: req.Description,
		Actor:       who,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Program updated"})
}

// List returns every program.
//
// @Summary      List programs
// @Tags         programs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   programResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/programs [get]
func (h *ProgramHandler) List(c echo.Context) error {
	programs, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProgramResponses(programs))
}

// programID parses a program id taken from the path or the body. Anything
// that is not a positive integer cannot name a program.
func programID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrProgramNotFound
	}
	return id, nil
}
