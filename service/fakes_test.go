package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"youtube-learner/constant"
	"youtube-learner/dto"
	"youtube-learner/entities"
)

type videoKey struct {
	userId  uuid.UUID
	videoId string
}

type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[videoKey]*entities.VideoRecord
	order  []videoKey

	statusUpdates []constant.VideoStatus
	completeCalls int
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[videoKey]*entities.VideoRecord)}
}

func (r *fakeVideoRepo) GetDB() *gorm.DB { return nil }

func (r *fakeVideoRepo) UpsertVideo(_ context.Context, video *entities.VideoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := videoKey{video.UserId, video.VideoId}
	if _, exists := r.videos[key]; !exists {
		r.order = append([]videoKey{key}, r.order...)
	}
	clone := *video
	r.videos[key] = &clone
	return nil
}

func (r *fakeVideoRepo) FindVideo(_ context.Context, userId uuid.UUID, videoId string) (*entities.VideoRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[videoKey{userId, videoId}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *video
	return &clone, nil
}

func (r *fakeVideoRepo) ListVideos(_ context.Context, userId uuid.UUID) ([]entities.VideoRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var videos []entities.VideoRecord
	for _, key := range r.order {
		if key.userId == userId {
			videos = append(videos, *r.videos[key])
		}
	}
	return videos, nil
}

func (r *fakeVideoRepo) UpdateVideoStatus(_ context.Context, userId uuid.UUID, videoId string, status constant.VideoStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[videoKey{userId, videoId}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	video.Status = status
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

func (r *fakeVideoRepo) CompleteVideo(_ context.Context, userId uuid.UUID, videoId string, transcript entities.Transcript, insights entities.Insights) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[videoKey{userId, videoId}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	video.Transcript = transcript
	video.Insights = insights
	video.Status = constant.VideoStatusCompleted
	r.completeCalls++
	return nil
}

func (r *fakeVideoRepo) DeleteVideo(_ context.Context, userId uuid.UUID, videoId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := videoKey{userId, videoId}
	delete(r.videos, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeGateway struct {
	mu sync.Mutex

	transcript         entities.Transcript
	insights           []string
	transcriptErr      error
	insightsErr        error
	transcriptFails    int
	insightFails       int
	transcriptCalls    int
	insightCalls       int
	receivedTranscript entities.Transcript
}

func (g *fakeGateway) GenerateTranscript(_ context.Context, _ string) (entities.Transcript, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transcriptCalls++
	if g.transcriptErr != nil && (g.transcriptFails == 0 || g.transcriptCalls <= g.transcriptFails) {
		return nil, g.transcriptErr
	}
	return g.transcript, nil
}

func (g *fakeGateway) GenerateInsights(_ context.Context, transcript entities.Transcript) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.insightCalls++
	g.receivedTranscript = transcript
	if g.insightsErr != nil && (g.insightFails == 0 || g.insightCalls <= g.insightFails) {
		return nil, g.insightsErr
	}
	return g.insights, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []dto.GenerateMessage
	err      error
}

func (p *fakePublisher) PublishGenerate(_ context.Context, msg dto.GenerateMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) published() []dto.GenerateMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dto.GenerateMessage(nil), p.messages...)
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]*entities.User
	sessions map[uuid.UUID]*entities.Session
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*entities.User),
		sessions: make(map[uuid.UUID]*entities.Session),
	}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) FindUserByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindUserById(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) CreateSession(_ context.Context, session *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = session
	return nil
}

func (r *fakeUserRepo) FindSession(_ context.Context, token uuid.UUID) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (r *fakeUserRepo) DeleteSession(_ context.Context, token uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}
