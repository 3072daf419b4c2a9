package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"safedose-api/internal/domain/chat"
)

// chatRepo guarda mensajes por usuario en orden de inserción.
type chatRepo struct {
	mu     sync.RWMutex
	byUser map[string][]chat.Message
}

func NewChatRepo() chat.Repository {
	return &chatRepo{
		byUser: make(map[string][]chat.Message),
	}
}

func (r *chatRepo) Append(ctx context.Context, m chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.UserID) == "" {
		return errors.New("chat message user id required")
	}
	r.byUser[m.UserID] = append(r.byUser[m.UserID], m)
	return nil
}

func (r *chatRepo) Recent(ctx context.Context, userID string, limit int) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := append([]chat.Message(nil), r.byUser[userID]...)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs, nil
}

func (r *chatRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for uid, msgs := range r.byUser {
		kept := msgs[:0]
		for _, m := range msgs {
			if m.CreatedAt.Before(cutoff) {
				n++
				continue
			}
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			delete(r.byUser, uid)
			continue
		}
		r.byUser[uid] = kept
	}
	return n, nil
}
