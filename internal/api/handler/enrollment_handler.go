package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/health-records/internal/core/ports"
	"github.com/clinicdesk/health-records/internal/pkg/metrics"
)

// EnrollmentHandler handles enrolling clients in programs.
type EnrollmentHandler struct {
	service ports.EnrollmentService
}

func NewEnrollmentHandler(service ports.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// Enroll adds the client to a program.
//
// @Summary      Enroll client
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Client ID"
// @Param        body  body      enrollRequest  true  "Program to enroll in"
// @Success      201   {object}  messageResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/clients/{id}/programs [post]
func (h *EnrollmentHandler) Enroll(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}

	var req enrollRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	pid, err := programID(string(req.ProgramID))
	if err != nil {
		return err
	}

	err = h.service.Enroll(c.Request().Context(), ports.EnrollmentInput{
		ClientID:  c.Param("id"),
		ProgramID: pid,
		Actor:     who,
	})
	if err != nil {
		return err
	}
	metrics.EnrollmentChangesTotal.WithLabelValues("enroll").Inc()

	return c.JSON(http.StatusCreated, messageResponse{Message: "Client enrolled in program"})
}

// Unenroll removes the client from a program.
//
// @Summary      Unenroll client
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string  true  "Client ID"
// @Param        program_id  path      int     true  "Program ID"
// @Success      200         {object}  messageResponse
// @Failure      400         {object}  ErrorResponse
// @Failure      404         {object}  ErrorResponse
// @Router       /api/clients/{id}/programs/{program_id} [delete]
func (h *EnrollmentHandler) Unenroll(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}

	pid, err := programID(c.Param("program_id"))
	if err != nil {
		return err
	}

	err = h.service.Unenroll(c.Request().Context(), ports.EnrollmentInput{
		ClientID:  c.Param("id"),
		ProgramID: pid,
		Actor:     who,
	})
	if err != nil {
		return err
	}
	metrics.EnrollmentChangesTotal.WithLabelValues("unenroll").Inc()

	return c.JSON(http.StatusOK, messageResponse{Message: "Client unenrolled from program"})
}
