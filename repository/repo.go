package repository

import (
	"context"
	"database/sql"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"youtube-learner/constant"
	"youtube-learner/entities"
)

type VideoRepository interface {
	GetDB() *gorm.DB
	UpsertVideo(ctx context.Context, video *entities.VideoRecord) error
	FindVideo(ctx context.Context, userId uuid.UUID, videoId string) (*entities.VideoRecord, error)
	ListVideos(ctx context.Context, userId uuid.UUID) ([]entities.VideoRecord, error)
	UpdateVideoStatus(ctx context.Context, userId uuid.UUID, videoId string, status constant.VideoStatus) error
	CompleteVideo(ctx context.Context, userId uuid.UUID, videoId string, transcript entities.Transcript, insights entities.Insights) error
	DeleteVideo(ctx context.Context, userId uuid.UUID, videoId string) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) VideoRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		},
	)
	_ = gormDB.AutoMigrate(&entities.User{}, &entities.Session{}, &entities.VideoRecord{})
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

// UpsertVideo writes a new pending record, or overwrites an existing record
// with the same id for this user. A resubmitted video starts over as pending
// with a fresh creation timestamp.
func (r *repo) UpsertVideo(ctx context.Context, video *entities.VideoRecord) error {
	err := r.GetDB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		UpdateAll: true,
	}).Create(video).Error
	if err != nil {
		return err
	}
	return nil
}

func (r *repo) FindVideo(ctx context.Context, userId uuid.UUID, videoId string) (*entities.VideoRecord, error) {
	video := &entities.VideoRecord{}
	err := r.GetDB().WithContext(ctx).First(video, "user_id = ? AND video_id = ?", userId, videoId).Error
	if err != nil {
		return nil, err
	}

	return video, nil
}

func (r *repo) ListVideos(ctx context.Context, userId uuid.UUID) ([]entities.VideoRecord, error) {
	var videos []entities.VideoRecord
	err := r.GetDB().WithContext(ctx).Where("user_id = ?", userId).Order("created_at DESC").Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) UpdateVideoStatus(ctx context.Context, userId uuid.UUID, videoId string, status constant.VideoStatus) error {
	result := r.GetDB().WithContext(ctx).Model(&entities.VideoRecord{}).
		Where("user_id = ? AND video_id = ?", userId, videoId).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	// Updates on a missing row succeed with zero rows; surface that as a
	// lookup failure so callers never treat it as a write.
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CompleteVideo persists the derived content in a single update so a record
// never ends up with exactly one of transcript/insights set.
func (r *repo) CompleteVideo(ctx context.Context, userId uuid.UUID, videoId string, transcript entities.Transcript, insights entities.Insights) error {
	updates := map[string]interface{}{
		"transcript": transcript,
		"insights":   insights,
		"status":     constant.VideoStatusCompleted,
	}
	result := r.GetDB().WithContext(ctx).Model(&entities.VideoRecord{}).
		Where("user_id = ? AND video_id = ?", userId, videoId).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) DeleteVideo(ctx context.Context, userId uuid.UUID, videoId string) error {
	err := r.GetDB().WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userId, videoId).
		Delete(&entities.VideoRecord{}).Error
	if err != nil {
		return err
	}
	return nil
}
