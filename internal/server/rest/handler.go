// Package rest exposes the registration service over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/hobbytracker/internal/common"
	"github.com/dmitrijs2005/hobbytracker/internal/logging"
	"github.com/dmitrijs2005/hobbytracker/internal/server/metrics"
	"github.com/dmitrijs2005/hobbytracker/internal/server/models"
	"github.com/gin-gonic/gin"
)

// Response details returned to clients.
const (
	DetailAlreadyRegistered = "Username or email already registered"
	DetailIntegrity         = "Database integrity error"
	DetailInternal          = "Internal server error"
	DetailUserNotFound      = "User not found"
	DetailTooManyRequests   = "Too many requests"
	DetailNotFound          = "Not Found"
	DetailInvalidUserID     = "invalid user id"
)

const healthTimeout = 2 * time.Second

// UserService is the part of services.UserService the handlers need.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
}

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterRequest is the body of POST /register/.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is what clients see of a user. It has no password field.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type Handler struct {
	users   UserService
	db      Pinger
	metrics *metrics.Metrics
	logger  logging.Logger
}

func NewHandler(us UserService, db Pinger, m *metrics.Metrics, l logging.Logger) *Handler {
	return &Handler{
		users:   us,
		db:      db,
		metrics: m,
		logger:  l.With("module", "rest_handler"),
	}
}

func toResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func respondError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}

// RegisterUser handles POST /register/.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Registration(metrics.OutcomeInvalid)
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			h.metrics.Registration(metrics.OutcomeInvalid)
			respondError(c, http.StatusUnprocessableEntity, err.Error())
		// ErrorIntegrity wraps ErrorConflict, so it goes first
		case errors.Is(err, common.ErrorIntegrity):
			h.metrics.Registration(metrics.OutcomeIntegrity)
			respondError(c, http.StatusBadRequest, DetailIntegrity)
		case errors.Is(err, common.ErrorConflict):
			h.metrics.Registration(metrics.OutcomeConflict)
			respondError(c, http.StatusBadRequest, DetailAlreadyRegistered)
		default:
			h.metrics.Registration(metrics.OutcomeError)
			h.logger.Error(c.Request.Context(), "register failed", "request_id", c.GetString(requestIDKey), "error", err)
			respondError(c, http.StatusInternalServerError, DetailInternal)
		}
		return
	}

	h.metrics.Registration(metrics.OutcomeCreated)
	c.JSON(http.StatusOK, toResponse(user))
}

// GetUser handles GET /users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusUnprocessableEntity, DetailInvalidUserID)
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(c, http.StatusNotFound, DetailUserNotFound)
			return
		}
		h.logger.Error(c.Request.Context(), "get user failed", "request_id", c.GetString(requestIDKey), "error", err)
		respondError(c, http.StatusInternalServerError, DetailInternal)
		return
	}

	c.JSON(http.StatusOK, toResponse(user))
}

// Health reports whether the database answers a ping.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn(ctx, "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
