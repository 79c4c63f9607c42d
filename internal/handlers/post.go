package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trend-social/trend-backend/internal/middleware"
	"github.com/trend-social/trend-backend/internal/services"
)

type PostHandler struct {
	feedService     *services.FeedService
	likeService     *services.LikeService
	commentService  *services.CommentService
	reactionService *services.ReactionService
	pageSize        int
}

func NewPostHandler(feedService *services.FeedService, likeService *services.LikeService, commentService *services.CommentService, reactionService *services.ReactionService, pageSize int) *PostHandler {
	return &PostHandler{
		feedService:     feedService,
		likeService:     likeService,
		commentService:  commentService,
		reactionService: reactionService,
		pageSize:        pageSize,
	}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.feedService.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	page := parsePageQuery(c)

	feed, err := h.feedService.ListPosts(c.Request.Context(), viewerID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	viewerID := middleware.GetUserID(c)

	post, err := h.feedService.GetPost(c.Request.Context(), viewerID, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.feedService.UpdatePost(c.Request.Context(), userID, postID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"post":    post,
	})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.feedService.DeletePost(c.Request.Context(), userID, postID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// ToggleLike 重复调用在点赞与取消之间交替，响应总是带最终状态
func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.likeService.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PostHandler) GetLikers(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page := parsePageQuery(c)
	offset := (page - 1) * h.pageSize

	likers, err := h.likeService.GetLikers(c.Request.Context(), viewerID, postID, offset, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"likers": likers,
		"page":   page,
	})
}

func (h *PostHandler) ToggleReaction(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, ok := parseIDParam(c, "id")
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

	result, err := h.reactionService.ToggleReaction(c.Request.Context(), userID, postID, req.ReactionType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PostHandler) ListReactions(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page := parsePageQuery(c)
	offset := (page - 1) * h.pageSize

	reactions, err := h.reactionService.ListReactions(c.Request.Context(), postID, offset, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reactions": reactions,
		"page":      page,
	})
}

func (h *PostHandler) CreateComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, ok := parseIDParam(c, "id")
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

	comment, err := h.commentService.CreateComment(c.Request.Context(), userID, postID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

func (h *PostHandler) GetPostComments(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page := parsePageQuery(c)
	offset := (page - 1) * h.pageSize

	comments, err := h.commentService.GetPostComments(c.Request.Context(), viewerID, postID, offset, h.pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"page":     page,
	})
}

func (h *PostHandler) UpdateComment(c *gin.Context) {
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

	comment, err := h.commentService.UpdateComment(c.Request.Context(), userID, commentID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (h *PostHandler) HidePost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.feedService.HidePost(c.Request.Context(), userID, postID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Post hidden successfully"})
}

func (h *PostHandler) UnhidePost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.feedService.UnhidePost(c.Request.Context(), userID, postID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post unhidden successfully"})
}
