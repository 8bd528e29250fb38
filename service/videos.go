package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"youtube-learner/config"
	"youtube-learner/constant"
	"youtube-learner/dto"
	"youtube-learner/entities"
	"youtube-learner/pkg/rabbitmq"
	"youtube-learner/pkg/youtube"
	"youtube-learner/repository"
)

var (
	// ErrSubmissionInFlight rejects a submission while the same user's
	// previous one is still being written. Rejected, not queued.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	// ErrNotRetryable is returned when retry is requested for a record that
	// is not in the FAILED state.
	ErrNotRetryable = errors.New("video is not in a failed state")
)

// VideoService is the session-scoped surface for the record collection:
// submission, lookup, deletion and user-triggered retry.
type VideoService interface {
	Submit(ctx context.Context, userId uuid.UUID, rawURL string) (*entities.VideoRecord, error)
	Get(ctx context.Context, userId uuid.UUID, videoId string) (*entities.VideoRecord, error)
	List(ctx context.Context, userId uuid.UUID) ([]entities.VideoRecord, error)
	Delete(ctx context.Context, userId uuid.UUID, videoId string) error
	Retry(ctx context.Context, userId uuid.UUID, videoId string) error
}

type videoService struct {
	repo      repository.VideoRepository
	metadata  *youtube.MetadataClient
	publisher rabbitmq.Publisher
	feed      Feed
	cfg       *config.Config

	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
}

func NewVideoService(repo repository.VideoRepository, metadata *youtube.MetadataClient, publisher rabbitmq.Publisher, feed Feed, cfg *config.Config) VideoService {
	return &videoService{
		repo:      repo,
		metadata:  metadata,
		publisher: publisher,
		feed:      feed,
		cfg:       cfg,
		inFlight:  make(map[uuid.UUID]bool),
	}
}

func (s *videoService) Submit(ctx context.Context, userId uuid.UUID, rawURL string) (*entities.VideoRecord, error) {
	if !s.acquireSubmit(userId) {
		return nil, ErrSubmissionInFlight
	}
	defer s.releaseSubmit(userId)

	videoId, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	title := s.metadata.FetchTitle(ctx, videoId)

	video := &entities.VideoRecord{
		UserId:  userId,
		VideoId: videoId,
		Title:   title,
		Url:     rawURL,
		Status:  constant.VideoStatusPending,
	}
	if err := s.repo.UpsertVideo(ctx, video); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", videoId).Msg("failed to create video record")
		return nil, err
	}
	s.feed.Notify(ctx, userId)

	if err := s.publisher.PublishGenerate(ctx, dto.GenerateMessage{UserId: userId, VideoId: videoId}); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", videoId).Msg("failed to enqueue generation job")
		return nil, err
	}

	return video, nil
}

func (s *videoService) acquireSubmit(userId uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[userId] {
		return false
	}
	s.inFlight[userId] = true
	return true
}

func (s *videoService) releaseSubmit(userId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userId)
}

func (s *videoService) Get(ctx context.Context, userId uuid.UUID, videoId string) (*entities.VideoRecord, error) {
	return s.repo.FindVideo(ctx, userId, videoId)
}

func (s *videoService) List(ctx context.Context, userId uuid.UUID) ([]entities.VideoRecord, error) {
	return s.repo.ListVideos(ctx, userId)
}

func (s *videoService) Delete(ctx context.Context, userId uuid.UUID, videoId string) error {
	if err := s.repo.DeleteVideo(ctx, userId, videoId); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", videoId).Msg("failed to delete video record")
		return err
	}

	// Best-effort cleanup of the derived content archive.
	if s.cfg.Storage != nil {
		objectName := ArchiveObjectName(userId, videoId)
		if err := s.cfg.Storage.RemoveObject(ctx, s.cfg.MinIOBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("object", objectName).Msg("failed to remove derived content archive")
		}
	}

	s.feed.Notify(ctx, userId)
	return nil
}

// Retry re-enqueues generation for a FAILED record. The record goes back to
// PENDING so the feed shows it as in progress again.
func (s *videoService) Retry(ctx context.Context, userId uuid.UUID, videoId string) error {
	video, err := s.repo.FindVideo(ctx, userId, videoId)
	if err != nil {
		return err
	}
	if video.Status != constant.VideoStatusFailed {
		return ErrNotRetryable
	}

	if err := s.repo.UpdateVideoStatus(ctx, userId, videoId, constant.VideoStatusPending); err != nil {
		return err
	}
	s.feed.Notify(ctx, userId)

	return s.publisher.PublishGenerate(ctx, dto.GenerateMessage{UserId: userId, VideoId: videoId})
}
