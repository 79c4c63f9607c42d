package services

import (
	"context"

	"github.com/trend-social/trend-backend/internal/repository"
)

// VisibilityService 为某个查看者计算排除集：
// 双向拉黑的用户集合，加上查看者自己隐藏的帖子集合。
type VisibilityService struct {
	blockRepo  *repository.BlockRepository
	hiddenRepo *repository.HiddenPostRepository
}

func NewVisibilityService(blockRepo *repository.BlockRepository, hiddenRepo *repository.HiddenPostRepository) *VisibilityService {
	return &VisibilityService{
		blockRepo:  blockRepo,
		hiddenRepo: hiddenRepo,
	}
}

// ExcludedUsers 匿名查看者没有身份，无可排除
func (s *VisibilityService) ExcludedUsers(ctx context.Context, viewerID int64) ([]int64, error) {
	if viewerID == AnonymousID {
		return nil, nil
	}
	return s.blockRepo.ExclusionSet(ctx, viewerID)
}

// HiddenPostIDs 隐藏只作用于列表查询，按 ID 直取不受影响
func (s *VisibilityService) HiddenPostIDs(ctx context.Context, viewerID int64) ([]int64, error) {
	if viewerID == AnonymousID {
		return nil, nil
	}
	return s.hiddenRepo.PostIDsForUser(ctx, viewerID)
}
