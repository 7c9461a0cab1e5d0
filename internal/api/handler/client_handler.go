package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/health-records/internal/core/ports"
	"github.com/clinicdesk/health-records/internal/pkg/metrics"
)

// ClientHandler handles HTTP requests for client records.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// Register creates a client record.
//
// @Summary      Register client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      clientRequest  true  "Client details"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Register(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.Register(c.Request().Context(), toClientInput(&req, who))
	if err != nil {
		return err
	}
	metrics.ClientsRegisteredTotal.Inc()

	return c.JSON(http.StatusCreated, createdResponse{ID: client.ID, Message: "Client registered"})
}

// Get returns a client with the programs it is enrolled in.
//
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  clientResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	client, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Update replaces a client's attributes.
//
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Client ID"
// @Param        body  body      clientRequest  true  "Client details"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.service.Update(c.Request().Context(), c.Param("id"), toClientInput(&req, who)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Client updated"})
}

// List returns every client.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   clientResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	clients, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponses(clients))
}

// Search matches q against names and email.
//
// @Summary      Search clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Search text"
// @Success      200  {array}   clientResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/clients/search [get]
func (h *ClientHandler) Search(c echo.Context) error {
	clients, err := h.service.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponses(clients))
}
