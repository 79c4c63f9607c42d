package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

// 每个测试用独立的内存库，cache=shared 让连接池内的连接看到同一份数据
func newTestDB(t *testing.T) *Database {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	database := &Database{db}
	require.NoError(t, database.AutoMigrate())
	return database
}

func createTestUser(t *testing.T, db *Database, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *Database, userID int64, content string) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:  userID,
		Content: content,
		Image:   "posts/" + content + ".jpg",
	}
	require.NoError(t, db.DB.Create(post).Error)
	return post
}
