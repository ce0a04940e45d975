package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fuser-service/internal/adapter/gin/middleware"
	usecase "fuser-service/internal/usecase/user"
	pkgerrors "fuser-service/pkg/errors"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  usecase.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc usecase.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{uc: uc, log: log}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// Username is a pointer so a missing field is distinguishable from a blank
// one. Password is accepted but never echoed back.
type CreateUserRequest struct {
	Username  *string `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Password  string  `json:"password"`
}

// UpdateUserRequest represents the HTTP request body for updating a user.
// Username is read-only and deliberately absent.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	City      *string `json:"city"`
	Country   *string `json:"country"`
}

// ValueRequest represents the body of the administrative mutation endpoints.
type ValueRequest[T any] struct {
	Value *T `json:"value"`
}

// UserResponse is the profile projection returned by create, get and update.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

// UserListItemResponse is the list projection; it additionally exposes the
// verification flag and the balance.
type UserListItemResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	City       string `json:"city"`
	Country    string `json:"country"`
	IsVerified bool   `json:"is_verified"`
	Balance    int64  `json:"balance"`
}

func toUserResponse(v *usecase.UserView) UserResponse {
	return UserResponse{
		ID:        v.ID,
		Username:  v.Username,
		Email:     v.Email,
		FirstName: v.FirstName,
		LastName:  v.LastName,
		City:      v.City,
		Country:   v.Country,
	}
}

// CreateUser handles POST /user/
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create user body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error."})
		return
	}

	view, err := h.uc.CreateUser(c.Request.Context(), usecase.CreateUserRequest{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
		Country:   req.Country,
		Password:  req.Password,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(view))
}

// ListUsers handles GET /user/?username=&is_verified=
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req usecase.ListUsersRequest
	if username, ok := c.GetQuery("username"); ok {
		req.Username = &username
	}
	if raw, ok := c.GetQuery("is_verified"); ok {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"is_verified": []string{"Enter a valid boolean value."}})
			return
		}
		req.IsVerified = &verified
	}

	items, err := h.uc.ListUsers(c.Request.Context(), middleware.CallerFromContext(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]UserListItemResponse, len(items))
	for i, item := range items {
		resp[i] = UserListItemResponse{
			ID:         item.ID,
			Username:   item.Username,
			Email:      item.Email,
			FirstName:  item.FirstName,
			LastName:   item.LastName,
			City:       item.City,
			Country:    item.Country,
			IsVerified: item.IsVerified,
			Balance:    item.Balance,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetUser handles GET /user/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.targetID(c)
	if !ok {
		return
	}

	view, err := h.uc.GetUser(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(view))
}

// UpdateUser handles PUT /user/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	h.update(c, false)
}

// PartialUpdateUser handles PATCH /user/:id
func (h *UserHandler) PartialUpdateUser(c *gin.Context) {
	h.update(c, true)
}

func (h *UserHandler) update(c *gin.Context, partial bool) {
	id, ok := h.targetID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update user body", zap.Error(err), zap.Int64("id", id))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error."})
		return
	}

	view, err := h.uc.UpdateUser(c.Request.Context(), middleware.CallerFromContext(c), id, usecase.UpdateUserRequest{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
		Country:   req.Country,
		Partial:   partial,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(view))
}

// DeleteUser handles DELETE /user/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.targetID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteUser(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateVerification handles POST /user/:id/update-verification
func (h *UserHandler) UpdateVerification(c *gin.Context) {
	id, ok := h.targetID(c)
	if !ok {
		return
	}

	var req ValueRequest[bool]
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error."})
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"value": []string{"This field is required."}})
		return
	}

	value, err := h.uc.SetVerification(c.Request.Context(), middleware.CallerFromContext(c), id, *req.Value)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": value})
}

// UpdateBalance handles POST /user/:id/update-balance
func (h *UserHandler) UpdateBalance(c *gin.Context) {
	id, ok := h.targetID(c)
	if !ok {
		return
	}

	var req ValueRequest[int64]
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error."})
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"value": []string{"This field is required."}})
		return
	}

	balance, err := h.uc.AdjustBalance(c.Request.Context(), middleware.CallerFromContext(c), id, *req.Value)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": balance})
}

// targetID parses the :id path parameter. A non-numeric id behaves like a
// route that does not exist.
func (h *UserHandler) targetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": pkgerrors.MsgNotFound})
		return 0, false
	}
	return id, true
}

// handleError maps usecase errors onto HTTP responses.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var statuser pkgerrors.HTTPStatuser
	if errors.As(err, &statuser) {
		c.JSON(statuser.HTTPStatus(), statuser.Body())
		return
	}

	h.log.Error("unhandled error", zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "An internal error occurred."})
}
