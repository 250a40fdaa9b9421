package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/yourusername/quiz-app/internal/domain/entity"
	"github.com/yourusername/quiz-app/internal/pkg/logger"
	"github.com/yourusername/quiz-app/internal/service/quizengine"
)

// SessionListener получает срез состояния после каждой успешной команды.
// Вызывается под блокировкой сессии: не должен блокироваться и обращаться к сессии.
type SessionListener func(snap quizengine.Snapshot)

// QuizSession владеет единственным движком и сериализует все команды к нему.
// Через нее работают и HTTP-обработчики, и WebSocket-клиенты.
type QuizSession struct {
	mu     sync.Mutex
	engine *quizengine.Engine
	loader *QuizLoader
	log    *logger.Logger

	listeners map[int]SessionListener
	nextID    int
}

// NewQuizSession создает сессию в состоянии Idle
func NewQuizSession(engine *quizengine.Engine, loader *QuizLoader, log *logger.Logger) *QuizSession {
	return &QuizSession{
		engine:    engine,
		loader:    loader,
		log:       log.With("component", "quiz_session"),
		listeners: make(map[int]SessionListener),
	}
}

// Subscribe регистрирует слушателя изменений. Возвращает функцию отписки.
func (s *QuizSession) Subscribe(fn SessionListener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// LoadDocument разбирает документ и начинает попытку
func (s *QuizSession) LoadDocument(data []byte) (quizengine.Snapshot, error) {
	quiz, err := s.loader.LoadBytes(data)
	if err != nil {
		s.logRejected(err)
		return s.Snapshot(), err
	}
	return s.start(quiz, "upload")
}

// LoadFile читает документ из потока (файл загрузки или тело запроса) и начинает попытку
func (s *QuizSession) LoadFile(r io.Reader) (quizengine.Snapshot, error) {
	quiz, err := s.loader.LoadReader(r)
	if err != nil {
		s.logRejected(err)
		return s.Snapshot(), err
	}
	return s.start(quiz, "upload")
}

// LoadSample загружает пример викторины. Сетевой запрос выполняется без блокировки сессии.
func (s *QuizSession) LoadSample(ctx context.Context) (quizengine.Snapshot, error) {
	if state := s.State(); state != quizengine.StateIdle {
		return s.Snapshot(), fmt.Errorf("%w: load requires %s, engine is %s", quizengine.ErrInvalidState, quizengine.StateIdle, state)
	}

	quiz, origin, err := s.loader.LoadSample(ctx)
	if err != nil {
		s.log.Error("Failed to load sample quiz", "error", err)
		return s.Snapshot(), err
	}
	return s.start(quiz, string(origin))
}

// SelectChoice запоминает выбор для текущего вопроса
func (s *QuizSession) SelectChoice(index int) (quizengine.Snapshot, error) {
	return s.apply(func(e *quizengine.Engine) error {
		return e.SelectChoice(index)
	})
}

// Advance переходит к следующему вопросу
func (s *QuizSession) Advance() (quizengine.Snapshot, error) {
	return s.apply(func(e *quizengine.Engine) error {
		return e.Advance()
	})
}

// Submit завершает попытку
func (s *QuizSession) Submit() (quizengine.Snapshot, error) {
	return s.apply(func(e *quizengine.Engine) error {
		report, err := e.Submit()
		if err == nil {
			s.log.Info("Quiz completed", "correct", report.Correct, "total", report.Total, "percentage", report.Percentage)
		}
		return err
	})
}

// Restart возвращает сессию к загрузке новой викторины
func (s *QuizSession) Restart() quizengine.Snapshot {
	snap, _ := s.apply(func(e *quizengine.Engine) error {
		e.Reset()
		return nil
	})
	return snap
}

// Snapshot возвращает текущее состояние
func (s *QuizSession) Snapshot() quizengine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// State возвращает текущее состояние движка
func (s *QuizSession) State() quizengine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// Report возвращает отчет завершенной попытки
func (s *QuizSession) Report() (*entity.ScoreReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Report()
}

func (s *QuizSession) start(quiz *entity.Quiz, origin string) (quizengine.Snapshot, error) {
	snap, err := s.apply(func(e *quizengine.Engine) error {
		return e.Load(quiz)
	})
	if err == nil {
		s.log.Info("Quiz loaded", "attempt_id", snap.AttemptID, "title", quiz.Title, "questions", quiz.QuestionCount(), "origin", origin)
	}
	return snap, err
}

// logRejected пишет отказ в приеме документа: ошибки формата ожидаемы, остальное - предупреждение
func (s *QuizSession) logRejected(err error) {
	if quizengine.IsValidationError(err) {
		s.log.Info("Quiz document rejected", "error", err)
		return
	}
	s.log.Warn("Quiz document could not be read", "error", err)
}

// apply выполняет команду под блокировкой и уведомляет слушателей при успехе
func (s *QuizSession) apply(cmd func(e *quizengine.Engine) error) (quizengine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := cmd(s.engine); err != nil {
		return s.engine.Snapshot(), err
	}

	snap := s.engine.Snapshot()
	for _, fn := range s.listeners {
		fn(snap)
	}
	return snap, nil
}
