package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"youtube-learner/config"
	"youtube-learner/constant"
	"youtube-learner/dto"
	"youtube-learner/entities"
	"youtube-learner/pkg/ai"
	"youtube-learner/repository"
)

var (
	generateMaxTries       = uint(3)
	generateRetryInitial   = 2 * time.Second
	generateRetryMaxPeriod = 30 * time.Second
)

// Service runs the insight pipeline for one record: transcript first, then
// insights derived from it, then a single persistence write. A failed run
// leaves the record FAILED with no partial derived content.
type Service interface {
	Process(ctx context.Context, message dto.GenerateMessage) error
}

type service struct {
	repo    repository.VideoRepository
	gateway ai.Gateway
	feed    Feed
	cfg     *config.Config
}

func NewService(repo repository.VideoRepository, gateway ai.Gateway, feed Feed, cfg *config.Config) Service {
	return &service{
		repo:    repo,
		gateway: gateway,
		feed:    feed,
		cfg:     cfg,
	}
}

func (s service) Process(ctx context.Context, message dto.GenerateMessage) (err error) {
	zerolog.Ctx(ctx).Info().Str("video_id", message.VideoId).Str("user_id", message.UserId.String()).Msg("processing generation job")

	video, err := s.repo.FindVideo(ctx, message.UserId, message.VideoId)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", message.VideoId).Msg("failed to find video record")
		return err
	}

	// Re-entrancy guard: a completed record is never regenerated, no matter
	// how often it is re-opened or a stale job is redelivered.
	if video.Complete() || video.Status == constant.VideoStatusCompleted {
		zerolog.Ctx(ctx).Info().Str("video_id", message.VideoId).Msg("video already has derived content")
		return nil
	}

	if err = s.repo.UpdateVideoStatus(ctx, message.UserId, message.VideoId, constant.VideoStatusGenerating); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to update video status")
		return err
	}
	s.feed.Notify(ctx, message.UserId)

	defer func() {
		if err != nil {
			if updateErr := s.repo.UpdateVideoStatus(ctx, message.UserId, message.VideoId, constant.VideoStatusFailed); updateErr != nil {
				zerolog.Ctx(ctx).Error().Err(updateErr).Msg("failed to update video status")
			}
			s.feed.Notify(ctx, message.UserId)
			// Generation errors are terminal for this run; the user retries
			// explicitly, the queue must not redeliver.
			zerolog.Ctx(ctx).Error().Err(err).Str("video_id", message.VideoId).Msg("generation failed")
			err = nil
		}
	}()

	transcript, err := retryGenerate(ctx, func() (entities.Transcript, error) {
		return s.gateway.GenerateTranscript(ctx, video.Url)
	})
	if err != nil {
		return fmt.Errorf("generating transcript: %w", err)
	}

	insights, err := retryGenerate(ctx, func() ([]string, error) {
		return s.gateway.GenerateInsights(ctx, transcript)
	})
	if err != nil {
		return fmt.Errorf("generating insights: %w", err)
	}

	if err = s.repo.CompleteVideo(ctx, message.UserId, message.VideoId, transcript, insights); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", message.VideoId).Msg("failed to persist derived content")
		return err
	}

	s.archiveDerivedContent(ctx, message.UserId, message.VideoId, transcript, insights)
	s.feed.Notify(ctx, message.UserId)

	zerolog.Ctx(ctx).Info().Str("video_id", message.VideoId).Msg("generation completed")
	return nil
}

func retryGenerate[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = generateRetryInitial
	bo.MaxInterval = generateRetryMaxPeriod
	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(generateMaxTries))
}

// archiveDerivedContent uploads the derived content to object storage.
// Best-effort: the record in Postgres is the source of truth, a failed
// archive write is logged and otherwise ignored.
func (s service) archiveDerivedContent(ctx context.Context, userId uuid.UUID, videoId string, transcript entities.Transcript, insights entities.Insights) {
	if s.cfg.Storage == nil {
		return
	}
	payload := struct {
		Insights   entities.Insights   `json:"insights"`
		Transcript entities.Transcript `json:"transcript"`
	}{Insights: insights, Transcript: transcript}

	body, err := json.Marshal(payload)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", videoId).Msg("failed to marshal derived content archive")
		return
	}

	objectName := ArchiveObjectName(userId, videoId)
	_, err = s.cfg.Storage.PutObject(ctx, s.cfg.MinIOBucket, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("object", objectName).Msg("failed to archive derived content")
	}
}

// ArchiveObjectName is the object key for a record's derived content archive.
func ArchiveObjectName(userId uuid.UUID, videoId string) string {
	return fmt.Sprintf("users/%s/videos/%s.json", userId, videoId)
}
