package internal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionsAreIsolatedPerChat(t *testing.T) {
	st := newSessionStore()

	st.withSession(1, func(s *Session) { s.State = StateClientName })
	st.withSession(2, func(s *Session) { s.State = StateContractorName })

	st.withSession(1, func(s *Session) {
		assert.Equal(t, StateClientName, s.State)
	})
	st.withSession(2, func(s *Session) {
		assert.Equal(t, State(StateContractorName), s.State)
	})
}

func TestSessionDataInitialized(t *testing.T) {
	st := newSessionStore()
	st.withSession(5, func(s *Session) {
		assert.Equal(t, StateIdle, s.State)
		assert.NotNil(t, s.Data, "карта ответов готова к записи сразу")
	})
}

func TestConcurrentUpdatesSameChat(t *testing.T) {
	st := newSessionStore()
	const n = 100

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st.withSession(7, func(s *Session) {
				s.Attachments = append(s.Attachments, fmt.Sprintf("ph%d", i))
			})
		}(i)
	}
	wg.Wait()

	st.withSession(7, func(s *Session) {
		assert.Len(t, s.Attachments, n)
	})
}

func TestConcurrentDistinctChats(t *testing.T) {
	st := newSessionStore()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			st.withSession(chatID, func(s *Session) {
				s.Data["name"] = fmt.Sprintf("user%d", chatID)
			})
		}(int64(i))
	}
	wg.Wait()

	for i := int64(0); i < n; i++ {
		st.withSession(i, func(s *Session) {
			assert.Equal(t, fmt.Sprintf("user%d", i), s.Data["name"])
		})
	}
}
