package internal

import "sync"

// sessionStore хранит диалоговые сессии по chat_id. Доступ к карте — под
// общим мьютексом, работа с конкретной сессией — под её собственным:
// события одного чата обрабатываются строго по очереди, разные чаты —
// параллельно (актуально в режиме webhook, где апдейты приходят конкурентно).
type sessionStore struct {
	mu sync.Mutex
	m  map[int64]*sessionEntry
}

type sessionEntry struct {
	mu sync.Mutex
	s  Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{m: make(map[int64]*sessionEntry)}
}

func (st *sessionStore) entry(chatID int64) *sessionEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.m[chatID]
	if !ok {
		e = &sessionEntry{}
		resetSession(&e.s)
		st.m[chatID] = e
	}
	return e
}

// withSession выполняет fn над сессией чата, удерживая её блокировку.
func (st *sessionStore) withSession(chatID int64, fn func(*Session)) {
	e := st.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.s)
}
