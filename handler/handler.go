package handler

import (
	"context"
	"encoding/json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"youtube-learner/dto"
	"youtube-learner/service"
)

type ServiceDependencies struct {
	InsightService service.Service
}

func GenerateHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var generate dto.GenerateMessage
	if err := json.Unmarshal(msg.Body, &generate); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal generate message")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", generate.UserId.String()).
		Str("video_id", generate.VideoId).
		Msg("received generate message")

	err := deps.InsightService.Process(ctx, generate)
	if err != nil {
		return err
	}

	return nil
}
