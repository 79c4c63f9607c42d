package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/trend-social/trend-backend/internal/config"
	"github.com/trend-social/trend-backend/internal/models"
	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/pkg/logger"
	"github.com/trend-social/trend-backend/pkg/queue"
	"gorm.io/gorm"
)

const maxPostContentLength = 1000

// FeedService 组合可见性过滤、互动计数与分页，产出对外的读模型
type FeedService struct {
	postRepo     *repository.PostRepository
	likeRepo     *repository.LikeRepository
	reactionRepo *repository.ReactionRepository
	counterRepo  *repository.CounterRepository
	hiddenRepo   *repository.HiddenPostRepository
	visibility   *VisibilityService
	producer     EventPublisher
	cache        FeedCache
	config       *config.FeedConfig
	logger       *logger.Logger
}

func NewFeedService(
	postRepo *repository.PostRepository,
	likeRepo *repository.LikeRepository,
	reactionRepo *repository.ReactionRepository,
	counterRepo *repository.CounterRepository,
	hiddenRepo *repository.HiddenPostRepository,
	visibility *VisibilityService,
	producer EventPublisher,
	cache FeedCache,
	config *config.FeedConfig,
	logger *logger.Logger,
) *FeedService {
	return &FeedService{
		postRepo:     postRepo,
		likeRepo:     likeRepo,
		reactionRepo: reactionRepo,
		counterRepo:  counterRepo,
		hiddenRepo:   hiddenRepo,
		visibility:   visibility,
		producer:     producer,
		cache:        cache,
		config:       config,
		logger:       logger,
	}
}

type CreatePostRequest struct {
	Content string `json:"content" binding:"max=1000"`
	Image   string `json:"image" binding:"required"`
}

type UpdatePostRequest struct {
	Content *string `json:"content" binding:"omitempty,max=1000"`
	Image   *string `json:"image"`
}

type PostFeedItem struct {
	*models.Post
	LikeCount      int64                      `json:"like_count"`
	CommentCount   int64                      `json:"comment_count"`
	ViewerHasLiked bool                       `json:"viewer_has_liked"`
	TopReactions   []repository.ReactionCount `json:"top_reactions,omitempty"`
}

type PostFeedResponse struct {
	Posts    []*PostFeedItem `json:"posts"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasMore  bool            `json:"has_more"`
}

func (s *FeedService) CreatePost(ctx context.Context, userID int64, req *CreatePostRequest) (*models.Post, error) {
	if utf8.RuneCountInString(req.Content) > maxPostContentLength {
		return nil, fmt.Errorf("%w: post content exceeds %d characters", ErrInvalidInput, maxPostContentLength)
	}
	if req.Image == "" {
		return nil, fmt.Errorf("%w: image reference is required", ErrInvalidInput)
	}

	post := &models.Post{
		UserID:  userID,
		Content: req.Content,
		Image:   req.Image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.invalidateFeedCache(ctx)

	event := queue.Event{
		Type:      queue.EventPostCreated,
		Timestamp: post.CreatedAt,
		Data: queue.PostEventData{
			PostID:  post.ID,
			UserID:  userID,
			Content: post.Content,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(userID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish post created event")
	}

	s.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"user_id": userID,
	}).Info("Post created successfully")

	return post, nil
}

// ListPosts 匿名查看者拿到未过滤的全量列表；
// 登录查看者排除双向拉黑的作者与自己隐藏的帖子。
func (s *FeedService) ListPosts(ctx context.Context, viewerID int64, page int) (*PostFeedResponse, error) {
	if page < 1 {
		page = 1
	}
	limit := s.config.PageSize
	offset := (page - 1) * limit

	// 匿名列表与查看者无关，可整页缓存
	cacheKey := ""
	if viewerID == AnonymousID && s.cache != nil {
		cacheKey = fmt.Sprintf("feed:posts:anon:%d", page)
		var cached PostFeedResponse
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	excludedUsers, err := s.visibility.ExcludedUsers(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	hiddenPosts, err := s.visibility.HiddenPostIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListVisible(ctx, excludedUsers, hiddenPosts, offset, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := false
	if len(posts) > limit {
		hasMore = true
		posts = posts[:limit]
	}

	items := make([]*PostFeedItem, 0, len(posts))
	for _, post := range posts {
		item, err := s.decoratePost(ctx, post, viewerID)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	response := &PostFeedResponse{
		Posts:    items,
		Page:     page,
		PageSize: limit,
		HasMore:  hasMore,
	}

	if cacheKey != "" {
		if err := s.cache.SetJSON(ctx, cacheKey, response, s.config.CacheTTL); err != nil {
			s.logger.WithError(err).Error("Failed to cache post feed")
		}
	}

	return response, nil
}

// GetPost 直取不应用隐藏过滤：自己隐藏的帖子仍可按 ID 访问
func (s *FeedService) GetPost(ctx context.Context, viewerID, postID int64) (*PostFeedItem, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	return s.decoratePost(ctx, post, viewerID)
}

func (s *FeedService) UpdatePost(ctx context.Context, requesterID, postID int64, req *UpdatePostRequest) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	if post.UserID != requesterID {
		return nil, fmt.Errorf("%w: only the post owner can update it", ErrForbidden)
	}

	if req.Content != nil {
		if utf8.RuneCountInString(*req.Content) > maxPostContentLength {
			return nil, fmt.Errorf("%w: post content exceeds %d characters", ErrInvalidInput, maxPostContentLength)
		}
		post.Content = *req.Content
	}
	if req.Image != nil && *req.Image != "" {
		post.Image = *req.Image
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.invalidateFeedCache(ctx)
	return post, nil
}

func (s *FeedService) DeletePost(ctx context.Context, requesterID, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	if post.UserID != requesterID {
		return fmt.Errorf("%w: only the post owner can delete it", ErrForbidden)
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	s.invalidateFeedCache(ctx)

	event := queue.Event{
		Type:      queue.EventPostDeleted,
		Timestamp: time.Now(),
		Data: queue.PostEventData{
			PostID: postID,
			UserID: requesterID,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(requesterID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish post deleted event")
	}

	return nil
}

// HidePost 隐藏是个人的信息流整理，不是删除也不是拉黑
func (s *FeedService) HidePost(ctx context.Context, userID, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	hidden := &models.HiddenPost{UserID: userID, PostID: postID}
	if err := s.hiddenRepo.Create(ctx, hidden); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: post is already hidden", ErrConflict)
		}
		return err
	}
	return nil
}

func (s *FeedService) UnhidePost(ctx context.Context, userID, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	deleted, err := s.hiddenRepo.Delete(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: post is not hidden", ErrNotFound)
	}
	return nil
}

// decoratePost 展示用计数读冗余计数行，不重算
func (s *FeedService) decoratePost(ctx context.Context, post *models.Post, viewerID int64) (*PostFeedItem, error) {
	likeCount, err := s.counterRepo.GetPostLikeCount(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	commentCount, err := s.counterRepo.GetPostCommentCount(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	viewerHasLiked := false
	if viewerID != AnonymousID {
		viewerHasLiked, err = s.likeRepo.IsLiked(ctx, post.ID, viewerID)
		if err != nil {
			return nil, err
		}
	}

	counts, err := s.reactionRepo.CountByType(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	sortReactionCounts(counts)
	if len(counts) > s.config.TopReactions {
		counts = counts[:s.config.TopReactions]
	}

	return &PostFeedItem{
		Post:           post,
		LikeCount:      likeCount,
		CommentCount:   commentCount,
		ViewerHasLiked: viewerHasLiked,
		TopReactions:   counts,
	}, nil
}

func (s *FeedService) invalidateFeedCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "feed:posts:*"); err != nil {
		s.logger.WithError(err).Error("Failed to invalidate feed cache")
	}
}
