package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yourusername/quiz-app/internal/config"
	"github.com/yourusername/quiz-app/internal/domain/entity"
	"github.com/yourusername/quiz-app/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-app/internal/pkg/errors"
	"github.com/yourusername/quiz-app/internal/pkg/logger"
	"github.com/yourusername/quiz-app/internal/service/quizengine"
	"github.com/yourusername/quiz-app/internal/service/sample"
)

// SampleOrigin - откуда был взят пример викторины
type SampleOrigin string

const (
	SampleOriginEmbedded SampleOrigin = "embedded"
	SampleOriginRemote   SampleOrigin = "remote"
	SampleOriginCache    SampleOrigin = "cache"
)

const sampleCacheKey = "quiz:sample:remote"

var (
	// ErrFetch - удаленный пример недоступен. Наружу не выходит: загрузчик переключается на встроенный пример.
	ErrFetch = fmt.Errorf("%w: sample fetch failed", apperrors.ErrUnavailable)

	// ErrDocumentTooLarge - документ больше допустимого размера загрузки.
	ErrDocumentTooLarge = fmt.Errorf("%w: document is too large", apperrors.ErrBadRequest)
)

// QuizLoader сводит все источники (файл, сеть, встроенный пример) к одному разбору quizengine.Parse
type QuizLoader struct {
	cfg      config.SampleConfig
	maxBytes int64
	client   *http.Client
	cache    repository.CacheRepository // может быть nil
	log      *logger.Logger
}

// NewQuizLoader создает загрузчик. client == nil - используется http.DefaultClient.
func NewQuizLoader(cfg config.QuizConfig, client *http.Client, cache repository.CacheRepository, log *logger.Logger) *QuizLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &QuizLoader{
		cfg:      cfg.Sample,
		maxBytes: cfg.MaxUploadBytes,
		client:   client,
		cache:    cache,
		log:      log.With("component", "quiz_loader"),
	}
}

// LoadBytes разбирает и проверяет документ
func (l *QuizLoader) LoadBytes(data []byte) (*entity.Quiz, error) {
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrDocumentTooLarge, len(data), l.maxBytes)
	}
	return quizengine.Parse(data)
}

// LoadReader читает документ с ограничением размера
func (l *QuizLoader) LoadReader(r io.Reader) (*entity.Quiz, error) {
	data, err := l.readLimited(r)
	if err != nil {
		return nil, err
	}
	return quizengine.Parse(data)
}

// LoadSample возвращает пример викторины: кеш -> удаленный источник -> встроенный пример.
// Ошибки сети и невалидный удаленный документ не возвращаются, а приводят к встроенному примеру.
func (l *QuizLoader) LoadSample(ctx context.Context) (*entity.Quiz, SampleOrigin, error) {
	if l.cfg.RemoteURL == "" {
		quiz, err := EmbeddedSample()
		return quiz, SampleOriginEmbedded, err
	}

	if quiz := l.fromCache(ctx); quiz != nil {
		return quiz, SampleOriginCache, nil
	}

	data, err := l.fetchRemote(ctx)
	if err == nil {
		quiz, parseErr := quizengine.Parse(data)
		if parseErr == nil {
			l.storeCache(ctx, data)
			return quiz, SampleOriginRemote, nil
		}
		l.log.Warn("Remote sample rejected, using embedded sample", "url", l.cfg.RemoteURL, "error", parseErr)
	} else {
		l.log.Warn("Remote sample unavailable, using embedded sample", "url", l.cfg.RemoteURL, "error", err)
	}

	quiz, err := EmbeddedSample()
	return quiz, SampleOriginEmbedded, err
}

// EmbeddedSample разбирает встроенный пример
func EmbeddedSample() (*entity.Quiz, error) {
	quiz, err := quizengine.Parse(sample.Document())
	if err != nil {
		return nil, fmt.Errorf("embedded sample is invalid: %w", err)
	}
	return quiz, nil
}

func (l *QuizLoader) fetchRemote(ctx context.Context) ([]byte, error) {
	if timeout := l.cfg.FetchTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.RemoteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetch, resp.StatusCode)
	}

	data, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return data, nil
}

func (l *QuizLoader) readLimited(r io.Reader) ([]byte, error) {
	if l.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrDocumentTooLarge, l.maxBytes)
	}
	return data, nil
}

func (l *QuizLoader) fromCache(ctx context.Context) *entity.Quiz {
	if l.cache == nil {
		return nil
	}

	raw, err := l.cache.Get(ctx, sampleCacheKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			l.log.Warn("Sample cache read failed", "error", err)
		}
		return nil
	}

	quiz, err := quizengine.Parse([]byte(raw))
	if err != nil {
		l.log.Warn("Cached sample is invalid, dropping it", "error", err)
		if delErr := l.cache.Delete(ctx, sampleCacheKey); delErr != nil {
			l.log.Warn("Failed to drop cached sample", "error", delErr)
		}
		return nil
	}
	return quiz
}

func (l *QuizLoader) storeCache(ctx context.Context, data []byte) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Set(ctx, sampleCacheKey, string(data), l.cfg.CacheTTL()); err != nil {
		l.log.Warn("Failed to cache remote sample", "error", err)
	}
}
