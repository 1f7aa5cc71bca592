package app

import "sync"

// Subscribe returns a channel of frame results and a function that cancels
// the subscription. Results are dropped for a subscriber whose buffer is full.
func (a *App) Subscribe() (<-chan FrameResult, func()) {
	ch := make(chan FrameResult, SubscriberBuffer)

	a.subMu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = ch
	a.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, id)
			close(ch)
			a.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (a *App) publish(fr FrameResult) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for _, ch := range a.subs {
		select {
		case ch <- fr:
		default:
		}
	}
}
