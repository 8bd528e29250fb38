package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"youtube-learner/entities"
	"youtube-learner/repository"
)

// Feed is the live view of a user's record collection. Every mutation path
// calls Notify, which re-queries the full ordered list and pushes it to that
// user's subscribers. Consumers get wholesale snapshots and never mutate them.
type Feed interface {
	Subscribe(ctx context.Context, userId uuid.UUID) (<-chan []entities.VideoRecord, func())
	Notify(ctx context.Context, userId uuid.UUID)
}

type feed struct {
	repo repository.VideoRepository

	mu     sync.Mutex
	subs   map[uuid.UUID]map[int]chan []entities.VideoRecord
	nextId int
}

func NewFeed(repo repository.VideoRepository) Feed {
	return &feed{
		repo: repo,
		subs: make(map[uuid.UUID]map[int]chan []entities.VideoRecord),
	}
}

// Subscribe registers a listener for one user and delivers the current
// snapshot immediately. The returned func is the teardown handle; after it
// returns the channel is closed and no further snapshots are delivered.
func (f *feed) Subscribe(ctx context.Context, userId uuid.UUID) (<-chan []entities.VideoRecord, func()) {
	ch := make(chan []entities.VideoRecord, 1)

	f.mu.Lock()
	if f.subs[userId] == nil {
		f.subs[userId] = make(map[int]chan []entities.VideoRecord)
	}
	id := f.nextId
	f.nextId++
	f.subs[userId][id] = ch
	f.mu.Unlock()

	// A mutation may race this initial query and fill the buffer through
	// Notify before the snapshot is delivered, so the send must not block.
	if videos, err := f.repo.ListVideos(ctx, userId); err == nil {
		deliver(ch, videos)
	} else {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", userId.String()).Msg("failed to load initial feed snapshot")
	}

	unsubscribe := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if subs, ok := f.subs[userId]; ok {
			if c, ok := subs[id]; ok {
				delete(subs, id)
				close(c)
			}
			if len(subs) == 0 {
				delete(f.subs, userId)
			}
		}
	}
	return ch, unsubscribe
}

func (f *feed) Notify(ctx context.Context, userId uuid.UUID) {
	f.mu.Lock()
	hasSubs := len(f.subs[userId]) > 0
	f.mu.Unlock()
	if !hasSubs {
		return
	}

	videos, err := f.repo.ListVideos(ctx, userId)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", userId.String()).Msg("failed to load feed snapshot")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[userId] {
		deliver(ch, videos)
	}
}

// deliver replaces a stale undelivered snapshot rather than blocking.
func deliver(ch chan []entities.VideoRecord, videos []entities.VideoRecord) {
	select {
	case ch <- videos:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- videos:
		default:
		}
	}
}
