package terminal

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"quiz-attempt/internal/app"
	"quiz-attempt/internal/domain"
)

// InterruptSource reports Ctrl+C as an attempt to leave the exam. While no handler is
// subscribed (before the quiz starts or after it is submitted) an interrupt calls quit.
type InterruptSource struct {
	presenter *Presenter
	quit      func()

	mu       sync.Mutex
	handlers map[int]app.LifecycleHandler
	nextID   int
}

func NewInterruptSource(presenter *Presenter, quit func()) *InterruptSource {
	return &InterruptSource{
		presenter: presenter,
		quit:      quit,
		handlers:  make(map[int]app.LifecycleHandler),
	}
}

func (s *InterruptSource) Subscribe(handler app.LifecycleHandler) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	}
}

// Listen forwards os.Interrupt until ctx ends.
func (s *InterruptSource) Listen(ctx context.Context) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	defer signal.Stop(signals)
	s.listen(ctx, signals)
}

func (s *InterruptSource) listen(ctx context.Context, signals <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			s.Interrupt()
		}
	}
}

// Interrupt handles one Ctrl+C.
func (s *InterruptSource) Interrupt() {
	s.mu.Lock()
	handlers := make([]app.LifecycleHandler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	if len(handlers) == 0 {
		if s.quit != nil {
			s.quit()
		}
		return
	}

	confirmLeave := false
	for _, h := range handlers {
		if h(domain.EventBeforeUnload).ConfirmLeave {
			confirmLeave = true
		}
	}
	if confirmLeave {
		s.presenter.Notice("Leaving is not allowed during the quiz. Type \"submit\" to finish.")
	}
}
