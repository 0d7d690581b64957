package mocks

import (
	"sync"

	"github.com/VitaminP8/blogapp/models"
)

// MockSubscriptionManager работает как настоящий менеджер и дополнительно
// запоминает все опубликованные комментарии
type MockSubscriptionManager struct {
	mu            sync.Mutex
	subs          map[uint][]chan *models.Comment // postID -> список каналов подписчиков
	notifications map[uint][]*models.Comment      // Для отслеживания в тестах
}

func NewMockSubscriptionManager() *MockSubscriptionManager {
	return &MockSubscriptionManager{
		subs:          make(map[uint][]chan *models.Comment),
		notifications: make(map[uint][]*models.Comment),
	}
}

func (m *MockSubscriptionManager) Subscribe(postID uint) (<-chan *models.Comment, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *models.Comment, 16)
	m.subs[postID] = append(m.subs[postID], ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			subscribers := m.subs[postID]
			for i, sub := range subscribers {
				if sub == ch {
					m.subs[postID] = append(subscribers[:i], subscribers[i+1:]...)
					close(ch)
					break
				}
			}
		})
	}

	return ch, cancel
}

func (m *MockSubscriptionManager) Publish(postID uint, comment *models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[postID] {
		select {
		case sub <- comment:
		default:
		}
	}

	// Сохраняем уведомление для тестирования
	cp := *comment
	m.notifications[postID] = append(m.notifications[postID], &cp)
}

// GetNotificationsForPost - вспомогательный метод для тестирования,
// возвращает все уведомления для конкретного поста
func (m *MockSubscriptionManager) GetNotificationsForPost(postID uint) []*models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()

	comments, ok := m.notifications[postID]
	if !ok {
		return nil
	}
	return comments
}
