package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/trend-social/trend-backend/internal/models"
	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/pkg/logger"
	"github.com/trend-social/trend-backend/pkg/queue"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 只负责身份协作方的最小面：注册、登录、查询。
// OTP 找回密码、头像存储等都在核心之外。
type UserService struct {
	userRepo *repository.UserRepository
	producer EventPublisher
	logger   *logger.Logger
}

func NewUserService(userRepo *repository.UserRepository, producer EventPublisher, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		producer: producer,
		logger:   logger,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=35"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=50"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		IsActive: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username or email already taken", ErrConflict)
		}
		return nil, err
	}

	event := queue.Event{
		Type:      queue.EventUserCreated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":  user.ID,
			"username": user.Username,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(user.ID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish user created event")
	}

	s.logger.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthenticated)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: user account is inactive", ErrForbidden)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return user, nil
}
