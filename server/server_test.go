package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"youtube-learner/constant"
	"youtube-learner/entities"
	"youtube-learner/pkg/youtube"
	"youtube-learner/service"
)

type fakeAuthService struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entities.Session
}

func newFakeAuthService() *fakeAuthService {
	return &fakeAuthService{sessions: make(map[uuid.UUID]*entities.Session)}
}

func (f *fakeAuthService) grant(userId uuid.UUID) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := uuid.New()
	f.sessions[token] = &entities.Session{Token: token, UserId: userId, ExpiresAt: time.Now().Add(time.Hour)}
	return token
}

func (f *fakeAuthService) SignUp(_ context.Context, email, _ string) (*entities.Session, *entities.User, error) {
	user := &entities.User{ID: uuid.New(), Email: email}
	token := f.grant(user.ID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[token], user, nil
}

func (f *fakeAuthService) SignIn(_ context.Context, email, _ string) (*entities.Session, *entities.User, error) {
	return nil, nil, &service.AuthError{Kind: constant.AuthErrorInvalidCredentials, Message: "Invalid credentials. Please check your email and password."}
}

func (f *fakeAuthService) SignOut(_ context.Context, token uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeAuthService) Resolve(_ context.Context, token uuid.UUID) (*entities.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[token]
	if !ok {
		return nil, &service.AuthError{Kind: constant.AuthErrorInvalidCredentials, Message: "Invalid or expired session."}
	}
	return session, nil
}

type fakeVideoService struct {
	videos    map[string]*entities.VideoRecord
	submitErr error
	deleted   []string
	retried   []string
}

func newFakeVideoService() *fakeVideoService {
	return &fakeVideoService{videos: make(map[string]*entities.VideoRecord)}
}

func (f *fakeVideoService) Submit(_ context.Context, userId uuid.UUID, rawURL string) (*entities.VideoRecord, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	videoId, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	video := &entities.VideoRecord{UserId: userId, VideoId: videoId, Title: youtube.PlaceholderTitle(videoId), Url: rawURL, Status: constant.VideoStatusPending}
	f.videos[videoId] = video
	return video, nil
}

func (f *fakeVideoService) Get(_ context.Context, _ uuid.UUID, videoId string) (*entities.VideoRecord, error) {
	video, ok := f.videos[videoId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return video, nil
}

func (f *fakeVideoService) List(_ context.Context, _ uuid.UUID) ([]entities.VideoRecord, error) {
	var videos []entities.VideoRecord
	for _, v := range f.videos {
		videos = append(videos, *v)
	}
	return videos, nil
}

func (f *fakeVideoService) Delete(_ context.Context, _ uuid.UUID, videoId string) error {
	delete(f.videos, videoId)
	f.deleted = append(f.deleted, videoId)
	return nil
}

func (f *fakeVideoService) Retry(_ context.Context, _ uuid.UUID, videoId string) error {
	video, ok := f.videos[videoId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if video.Status != constant.VideoStatusFailed {
		return service.ErrNotRetryable
	}
	f.retried = append(f.retried, videoId)
	return nil
}

type fakeFeed struct {
	snapshots    chan []entities.VideoRecord
	unsubscribed bool
}

func (f *fakeFeed) Subscribe(_ context.Context, _ uuid.UUID) (<-chan []entities.VideoRecord, func()) {
	return f.snapshots, func() { f.unsubscribed = true }
}

func (f *fakeFeed) Notify(_ context.Context, _ uuid.UUID) {}

func newTestRouter(auth *fakeAuthService, videos *fakeVideoService, feed service.Feed) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if feed == nil {
		feed = &fakeFeed{snapshots: make(chan []entities.VideoRecord)}
	}
	addRoutes(r, context.Background(), auth, videos, feed)
	return r
}

func doJSON(r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitEndpoint(t *testing.T) {
	auth := newFakeAuthService()
	videos := newFakeVideoService()
	r := newTestRouter(auth, videos, nil)
	token := auth.grant(uuid.New())

	w := doJSON(r, http.MethodPost, "/api/videos", token.String(), map[string]string{"url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	require.Equal(t, http.StatusCreated, w.Code)

	var video entities.VideoRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &video))
	assert.Equal(t, "dQw4w9WgXcQ", video.VideoId)
	assert.Equal(t, constant.VideoStatusPending, video.Status)
}

func TestSubmitEndpoint_InvalidURL(t *testing.T) {
	auth := newFakeAuthService()
	r := newTestRouter(auth, newFakeVideoService(), nil)
	token := auth.grant(uuid.New())

	w := doJSON(r, http.MethodPost, "/api/videos", token.String(), map[string]string{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid-url")
}

func TestSubmitEndpoint_InFlight(t *testing.T) {
	auth := newFakeAuthService()
	videos := newFakeVideoService()
	videos.submitErr = service.ErrSubmissionInFlight
	r := newTestRouter(auth, videos, nil)
	token := auth.grant(uuid.New())

	w := doJSON(r, http.MethodPost, "/api/videos", token.String(), map[string]string{"url": "https://youtu.be/dQw4w9WgXcQ"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVideosEndpoints_RequireAuth(t *testing.T) {
	r := newTestRouter(newFakeAuthService(), newFakeVideoService(), nil)

	w := doJSON(r, http.MethodGet, "/api/videos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/videos", uuid.NewString(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/videos", "not-a-uuid", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	auth := newFakeAuthService()
	videos := newFakeVideoService()
	r := newTestRouter(auth, videos, nil)
	userId := uuid.New()
	token := auth.grant(userId)

	w := doJSON(r, http.MethodPost, "/api/videos", token.String(), map[string]string{"url": "https://youtu.be/dQw4w9WgXcQ"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/videos/dQw4w9WgXcQ", token.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"dQw4w9WgXcQ"}, videos.deleted)
}

func TestRetryEndpoint(t *testing.T) {
	auth := newFakeAuthService()
	videos := newFakeVideoService()
	r := newTestRouter(auth, videos, nil)
	token := auth.grant(uuid.New())

	videos.videos["dQw4w9WgXcQ"] = &entities.VideoRecord{VideoId: "dQw4w9WgXcQ", Status: constant.VideoStatusPending}
	w := doJSON(r, http.MethodPost, "/api/videos/dQw4w9WgXcQ/retry", token.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	videos.videos["dQw4w9WgXcQ"].Status = constant.VideoStatusFailed
	w = doJSON(r, http.MethodPost, "/api/videos/dQw4w9WgXcQ/retry", token.String(), nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

// streamRecorder adds the CloseNotifier implementation gin's Stream expects
// from the underlying writer.
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

// startStream opens GET /api/feed on its own goroutine and returns the
// recorder plus a channel closed when the handler returns.
func startStream(r *gin.Engine, ctx context.Context, token uuid.UUID) (*streamRecorder, chan struct{}) {
	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token.String())
	w := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()
	return w, done
}

func waitStream(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("feed stream did not terminate")
	}
}

func TestFeedStream(t *testing.T) {
	auth := newFakeAuthService()
	feed := &fakeFeed{snapshots: make(chan []entities.VideoRecord)}
	r := newTestRouter(auth, newFakeVideoService(), feed)
	token := auth.grant(uuid.New())

	ctx, cancel := context.WithCancel(context.Background())
	w, done := startStream(r, ctx, token)

	// The unbuffered send completes only once the handler has consumed the
	// snapshot, so the event is written before the disconnect below.
	feed.snapshots <- []entities.VideoRecord{{VideoId: "dQw4w9WgXcQ", Status: constant.VideoStatusPending}}
	cancel()
	waitStream(t, done)

	assert.True(t, feed.unsubscribed)
	body := w.Body.String()
	assert.Contains(t, body, "event:videos")
	assert.Contains(t, body, "dQw4w9WgXcQ")
}

func TestFeedStream_RequiresAuth(t *testing.T) {
	r := newTestRouter(newFakeAuthService(), newFakeVideoService(), nil)

	w := doJSON(r, http.MethodGet, "/api/feed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFeedStream_EndsAfterSignOut(t *testing.T) {
	auth := newFakeAuthService()
	feed := &fakeFeed{snapshots: make(chan []entities.VideoRecord)}
	r := newTestRouter(auth, newFakeVideoService(), feed)
	token := auth.grant(uuid.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, done := startStream(r, ctx, token)

	feed.snapshots <- []entities.VideoRecord{{VideoId: "aaaaaaaaaaa"}}

	// Invalidate the token; the next write must end the stream instead of
	// leaking the signed-out user's records.
	require.NoError(t, auth.SignOut(context.Background(), token))
	feed.snapshots <- []entities.VideoRecord{{VideoId: "bbbbbbbbbbb"}}
	waitStream(t, done)

	assert.True(t, feed.unsubscribed)
	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, "event:videos"))
	assert.NotContains(t, body, "bbbbbbbbbbb")
}

func TestSignUpEndpoint(t *testing.T) {
	auth := newFakeAuthService()
	r := newTestRouter(auth, newFakeVideoService(), nil)

	w := doJSON(r, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "alice@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
}

func TestSignInEndpoint_InvalidCredentials(t *testing.T) {
	auth := newFakeAuthService()
	r := newTestRouter(auth, newFakeVideoService(), nil)

	w := doJSON(r, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), constant.AuthErrorInvalidCredentials.String())
}
