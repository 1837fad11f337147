package app

import (
	"context"
	"log"
	"sync"

	"rollbook-service/internal/domain"
)

// boardHub fans board snapshots out to subscribers. Subscriptions are keyed by
// mode plus date; the overall board has a single key.
type boardHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Board]struct{}
}

func newBoardHub() *boardHub {
	return &boardHub{subscribers: make(map[string]map[chan domain.Board]struct{})}
}

func hubKey(mode, date string) string {
	if mode == domain.BoardOverall {
		return domain.BoardOverall
	}
	return domain.BoardDaily + "|" + date
}

func (h *boardHub) subscribe(mode, date string) (chan domain.Board, func()) {
	ch := make(chan domain.Board, 8)
	key := hubKey(mode, date)

	h.mu.Lock()
	if h.subscribers[key] == nil {
		h.subscribers[key] = make(map[chan domain.Board]struct{})
	}
	h.subscribers[key][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subscribers[key]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subscribers, key)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

type boardFunc func(ctx context.Context, mode, date string) (domain.Board, error)

// broadcastDate pushes fresh snapshots to the date's daily subscribers and to
// overall subscribers. Boards are only computed for keys somebody listens on.
func (h *boardHub) broadcastDate(ctx context.Context, date string, build boardFunc) error {
	if err := h.push(ctx, domain.BoardDaily, date, build); err != nil {
		return err
	}
	return h.push(ctx, domain.BoardOverall, "", build)
}

// broadcastAll refreshes every live subscription, daily and overall alike.
func (h *boardHub) broadcastAll(ctx context.Context, build boardFunc) {
	h.mu.Lock()
	keys := make([]string, 0, len(h.subscribers))
	for key := range h.subscribers {
		keys = append(keys, key)
	}
	h.mu.Unlock()

	for _, key := range keys {
		mode, date := domain.BoardOverall, ""
		if key != domain.BoardOverall {
			mode, date = domain.BoardDaily, key[len(domain.BoardDaily)+1:]
		}
		if err := h.push(ctx, mode, date, build); err != nil {
			log.Printf("broadcast %s board: %v", mode, err)
		}
	}
}

func (h *boardHub) push(ctx context.Context, mode, date string, build boardFunc) error {
	key := hubKey(mode, date)

	h.mu.Lock()
	listening := len(h.subscribers[key]) > 0
	h.mu.Unlock()
	if !listening {
		return nil
	}

	board, err := build(ctx, mode, date)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[key] {
		select {
		case ch <- board:
		default:
			// Slow subscriber: drop its stale snapshot so the latest one lands.
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
	return nil
}
