package controller

import (
	"net/http"
	"strconv"

	"ctchen222/fatty-hosting/internal/api/apperror"
	"ctchen222/fatty-hosting/internal/api/middleware"
	"ctchen222/fatty-hosting/internal/api/models"
	"ctchen222/fatty-hosting/internal/api/response"
	"ctchen222/fatty-hosting/internal/api/service"
	"ctchen222/fatty-hosting/internal/validator"

	"github.com/gin-gonic/gin"
)

// AdminKeyHeader carries the shared approval secret.
const AdminKeyHeader = "x-admin-key"

// ServerController handles hosting request HTTP requests.
type ServerController struct {
	requestService service.RequestService
	exposeDetail   bool
}

// NewServerController creates a new ServerController.
func NewServerController(requestService service.RequestService, exposeDetail bool) *ServerController {
	return &ServerController{
		requestService: requestService,
		exposeDetail:   exposeDetail,
	}
}

// Submit handles POST /api/servers/request.
func (sc *ServerController) Submit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req models.SubmitServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validator.Translate(err), sc.exposeDetail)
		return
	}

	id, err := sc.requestService.Submit(c.Request.Context(), user.ID, &req)
	if err != nil {
		response.Error(c, err, sc.exposeDetail)
		return
	}

	response.JSON(c, http.StatusCreated,
		"Server request submitted successfully! You will receive an email once your server is ready.",
		gin.H{"requestId": id},
	)
}

// MyRequests handles GET /api/servers/my-requests.
func (sc *ServerController) MyRequests(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	requests, err := sc.requestService.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err, sc.exposeDetail)
		return
	}

	response.JSON(c, http.StatusOK, "", gin.H{"requests": requests})
}

// Approve handles POST /api/servers/approve/:id.
func (sc *ServerController) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, apperror.Validation("Invalid request id",
			apperror.FieldError{Field: "id", Message: "id must be a positive integer"}), sc.exposeDetail)
		return
	}

	if err := sc.requestService.Approve(c.Request.Context(), id, c.GetHeader(AdminKeyHeader)); err != nil {
		response.Error(c, err, sc.exposeDetail)
		return
	}

	response.JSON(c, http.StatusOK, "Server request approved", gin.H{"requestId": id})
}
