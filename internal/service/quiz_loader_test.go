package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quiz-app/internal/config"
	apperrors "github.com/yourusername/quiz-app/internal/pkg/errors"
	"github.com/yourusername/quiz-app/internal/pkg/logger"
	"github.com/yourusername/quiz-app/internal/repository/memory"
	"github.com/yourusername/quiz-app/internal/service/quizengine"
)

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(key)
	return args.Error(0)
}

const remoteQuizJSON = `{"title":"Remote","questions":[
	{"question":"2+2?","choices":["3","4"],"correctAnswer":1},
	{"question":"Sky?","choices":["blue","green","red"],"correctAnswer":0}
]}`

func newTestLoader(remoteURL string, cache *MockCacheRepository) *QuizLoader {
	cfg := config.QuizConfig{
		MaxUploadBytes: 1 << 16,
		Sample: config.SampleConfig{
			RemoteURL:       remoteURL,
			FetchTimeoutSec: 2,
			CacheTTLSec:     60,
		},
	}
	if cache == nil {
		return NewQuizLoader(cfg, nil, nil, logger.NewNop())
	}
	return NewQuizLoader(cfg, nil, cache, logger.NewNop())
}

func TestQuizLoader_LoadBytes(t *testing.T) {
	loader := newTestLoader("", nil)

	quiz, err := loader.LoadBytes([]byte(remoteQuizJSON))
	require.NoError(t, err)
	assert.Equal(t, "Remote", quiz.Title)
	assert.Equal(t, 2, quiz.QuestionCount())

	_, err = loader.LoadBytes([]byte(`{"questions":[]}`))
	assert.ErrorIs(t, err, quizengine.ErrMissingQuestions)
}

func TestQuizLoader_LoadBytesTooLarge(t *testing.T) {
	loader := newTestLoader("", nil)
	big := make([]byte, (1<<16)+1)

	_, err := loader.LoadBytes(big)

	assert.ErrorIs(t, err, ErrDocumentTooLarge)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestQuizLoader_LoadReader(t *testing.T) {
	loader := newTestLoader("", nil)

	quiz, err := loader.LoadReader(strings.NewReader(remoteQuizJSON))
	require.NoError(t, err)
	assert.Equal(t, 2, quiz.QuestionCount())

	_, err = loader.LoadReader(strings.NewReader(strings.Repeat(" ", (1<<16)+10)))
	assert.ErrorIs(t, err, ErrDocumentTooLarge)

	_, err = loader.LoadReader(strings.NewReader("{not json"))
	assert.ErrorIs(t, err, quizengine.ErrParse)
}

func TestQuizLoader_LoadSample_EmbeddedWhenNoRemote(t *testing.T) {
	loader := newTestLoader("", nil)

	quiz, origin, err := loader.LoadSample(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SampleOriginEmbedded, origin)
	assert.Equal(t, 10, quiz.QuestionCount())
}

func TestQuizLoader_LoadSample_RemoteIsCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(remoteQuizJSON))
	}))
	defer srv.Close()

	cache := new(MockCacheRepository)
	cache.On("Get", sampleCacheKey).Return("", apperrors.ErrNotFound).Once()
	cache.On("Set", sampleCacheKey, remoteQuizJSON, time.Minute).Return(nil).Once()

	loader := newTestLoader(srv.URL, cache)
	quiz, origin, err := loader.LoadSample(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SampleOriginRemote, origin)
	assert.Equal(t, "Remote", quiz.Title)
	cache.AssertExpectations(t)
}

func TestQuizLoader_LoadSample_FromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(remoteQuizJSON))
	}))
	defer srv.Close()

	cache := new(MockCacheRepository)
	cache.On("Get", sampleCacheKey).Return(remoteQuizJSON, nil).Once()

	loader := newTestLoader(srv.URL, cache)
	quiz, origin, err := loader.LoadSample(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SampleOriginCache, origin)
	assert.Equal(t, 2, quiz.QuestionCount())
	assert.Zero(t, hits.Load(), "при попадании в кеш сеть не используется")
	cache.AssertExpectations(t)
}

func TestQuizLoader_LoadSample_InvalidCacheIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(remoteQuizJSON))
	}))
	defer srv.Close()

	cache := new(MockCacheRepository)
	cache.On("Get", sampleCacheKey).Return(`{"questions":[]}`, nil).Once()
	cache.On("Delete", sampleCacheKey).Return(nil).Once()
	cache.On("Set", sampleCacheKey, remoteQuizJSON, time.Minute).Return(nil).Once()

	loader := newTestLoader(srv.URL, cache)
	_, origin, err := loader.LoadSample(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SampleOriginRemote, origin)
	cache.AssertExpectations(t)
}

func TestQuizLoader_LoadSample_FallbackOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	loader := newTestLoader(srv.URL, nil)
	quiz, origin, err := loader.LoadSample(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SampleOriginEmbedded, origin)
	assert.Equal(t, 10, quiz.QuestionCount())
}

func TestQuizLoader_LoadSample_FallbackOnInvalidRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"questions":[{"question":"x","choices":["a"],"correctAnswer":0}]}`))
	}))
	defer srv.Close()

	cache := new(MockCacheRepository)
	cache.On("Get", sampleCacheKey).Return("", apperrors.ErrNotFound).Once()

	loader := newTestLoader(srv.URL, cache)
	_, origin, err := loader.LoadSample(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SampleOriginEmbedded, origin)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuizLoader_LoadSample_FallbackOnUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	loader := newTestLoader(url, nil)
	quiz, origin, err := loader.LoadSample(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SampleOriginEmbedded, origin)
	assert.NotNil(t, quiz)
}

func TestQuizLoader_FetchRemoteWrapsErrFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	loader := newTestLoader(srv.URL, nil)
	_, err := loader.fetchRemote(context.Background())

	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestQuizLoader_WithMemoryCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(remoteQuizJSON))
	}))
	defer srv.Close()

	cfg := config.QuizConfig{
		MaxUploadBytes: 1 << 16,
		Sample:         config.SampleConfig{RemoteURL: srv.URL, CacheTTLSec: 60},
	}
	loader := NewQuizLoader(cfg, srv.Client(), memory.NewCacheRepo(), logger.NewNop())

	_, origin, err := loader.LoadSample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SampleOriginRemote, origin)

	_, origin, err = loader.LoadSample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SampleOriginCache, origin)
	assert.Equal(t, int32(1), hits.Load())
}
