package index

import (
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/linemark/internal/logger"
)

// Listener is called after every committed mutation. It carries no payload:
// listeners pull whatever state they need from the index.
//
// Listeners run synchronously on the mutating goroutine and must not block
// or call back into a mutation.
type Listener = func()

type subscription struct {
	id int
	fn Listener
}

// broadcaster fans a change signal out to every subscriber.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
	logger logger.Logger
}

func (b *broadcaster) subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *broadcaster) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// fire calls every listener in subscription order. A panicking listener is
// logged and skipped so the others still refresh.
func (b *broadcaster) fire() {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		b.call(s)
	}
}

func (b *broadcaster) call(s subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("change listener panicked",
				logger.Int("listener", s.id),
				logger.String("panic", fmt.Sprint(r)))
		}
	}()
	s.fn()
}
