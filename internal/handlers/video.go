package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trend-social/trend-backend/internal/middleware"
	"github.com/trend-social/trend-backend/internal/services"
)

type VideoHandler struct {
	videoService *services.VideoService
	pageSize     int
}

func NewVideoHandler(videoService *services.VideoService, pageSize int) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
		pageSize:     pageSize,
	}
}

func (h *VideoHandler) CreateVideo(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := h.videoService.CreateVideo(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Video created successfully",
		"video":   video,
	})
}

func (h *VideoHandler) ListVideos(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	page := parsePageQuery(c)

	videos, err := h.videoService.ListVideos(c.Request.Context(), viewerID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": videos,
		"page":   page,
	})
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	viewerID := middleware.GetUserID(c)

	video, err := h.videoService.GetVideo(c.Request.Context(), viewerID, videoID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": video})
}

func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := h.videoService.UpdateVideo(c.Request.Context(), userID, videoID, req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Video updated successfully",
		"video":   video,
	})
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.videoService.DeleteVideo(c.Request.Context(), userID, videoID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

func (h *VideoHandler) ToggleLike(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.videoService.ToggleLike(c.Request.Context(), userID, videoID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *VideoHandler) ToggleReaction(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ReactionType string `json:"reaction_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.videoService.ToggleReaction(c.Request.Context(), userID, videoID, req.ReactionType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *VideoHandler) GetLikers(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page := parsePageQuery(c)
	offset := (page - 1) * h.pageSize

	likers, err := h.videoService.GetLikers(c.Request.Context(), viewerID, videoID, offset, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"likers": likers,
		"page":   page,
	})
}

func (h *VideoHandler) CreateComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.videoService.CreateComment(c.Request.Context(), userID, videoID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

func (h *VideoHandler) GetVideoComments(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page := parsePageQuery(c)
	offset := (page - 1) * h.pageSize

	comments, err := h.videoService.GetVideoComments(c.Request.Context(), viewerID, videoID, offset, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"page":     page,
	})
}

func (h *VideoHandler) UpdateComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.videoService.UpdateComment(c.Request.Context(), userID, commentID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

func (h *VideoHandler) DeleteComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.videoService.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
