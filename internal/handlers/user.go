package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trend-social/trend-backend/internal/config"
	"github.com/trend-social/trend-backend/internal/middleware"
	"github.com/trend-social/trend-backend/internal/services"
)

type UserHandler struct {
	userService         *services.UserService
	relationshipService *services.RelationshipService
	jwtConfig           *config.JWTConfig
	pageSize            int
}

func NewUserHandler(userService *services.UserService, relationshipService *services.RelationshipService, jwtConfig *config.JWTConfig, pageSize int) *UserHandler {
	return &UserHandler{
		userService:         userService,
		relationshipService: relationshipService,
		jwtConfig:           jwtConfig,
		pageSize:            pageSize,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.jwtConfig.Secret, int64(h.jwtConfig.ExpireTime.Seconds()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) Block(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.relationshipService.Block(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User blocked successfully"})
}

func (h *UserHandler) Unblock(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.relationshipService.Unblock(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unblocked successfully"})
}

func (h *UserHandler) Follow(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.relationshipService.Follow(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User followed successfully"})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.relationshipService.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unfollowed successfully"})
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page := parsePageQuery(c)
	offset := (page - 1) * h.pageSize

	followers, err := h.relationshipService.GetFollowers(c.Request.Context(), userID, offset, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followers": followers,
		"page":      page,
	})
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page := parsePageQuery(c)
	offset := (page - 1) * h.pageSize

	following, err := h.relationshipService.GetFollowing(c.Request.Context(), userID, offset, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
		"page":      page,
	})
}
