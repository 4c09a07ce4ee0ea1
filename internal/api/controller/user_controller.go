package controller

import (
	"net/http"

	"ctchen222/fatty-hosting/internal/api/middleware"
	"ctchen222/fatty-hosting/internal/api/models"
	"ctchen222/fatty-hosting/internal/api/response"
	"ctchen222/fatty-hosting/internal/api/service"
	"ctchen222/fatty-hosting/internal/validator"

	"github.com/gin-gonic/gin"
)

// UserController handles account HTTP requests.
type UserController struct {
	userService  service.UserService
	exposeDetail bool
}

// NewUserController creates a new UserController. exposeDetail echoes
// internal error detail in 5xx bodies.
func NewUserController(userService service.UserService, exposeDetail bool) *UserController {
	return &UserController{
		userService:  userService,
		exposeDetail: exposeDetail,
	}
}

// Register handles the user registration endpoint.
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validator.Translate(err), uc.exposeDetail)
		return
	}

	result, err := uc.userService.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err, uc.exposeDetail)
		return
	}

	response.JSON(c, http.StatusCreated, "User registered successfully", gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// Login handles the user login endpoint.
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validator.Translate(err), uc.exposeDetail)
		return
	}

	result, err := uc.userService.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err, uc.exposeDetail)
		return
	}

	response.JSON(c, http.StatusOK, "Login successful", gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// Verify returns the user behind the bearer token. Runs after middleware.Auth.
func (uc *UserController) Verify(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Invalid token")
		return
	}
	response.JSON(c, http.StatusOK, "", gin.H{"user": user.Public()})
}
