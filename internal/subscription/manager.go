package subscription

import (
	"sync"

	"github.com/VitaminP8/blogapp/models"
)

// subscriberBuffer - сколько комментариев копится у подписчика, который не успевает читать
const subscriberBuffer = 16

type SubscriptionManager struct {
	mu   sync.Mutex
	subs map[uint][]chan *models.Comment // postID -> список каналов подписчиков
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subs: make(map[uint][]chan *models.Comment),
	}
}

func (m *SubscriptionManager) Subscribe(postID uint) (<-chan *models.Comment, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *models.Comment, subscriberBuffer)

	m.subs[postID] = append(m.subs[postID], ch)

	// функция для отписки, повторный вызов ничего не делает
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			subscribers := m.subs[postID]
			for i, sub := range subscribers {
				if sub == ch {
					// Удаляем подписчика
					m.subs[postID] = append(subscribers[:i], subscribers[i+1:]...)
					close(ch)
					break
				}
			}
		})
	}

	return ch, cancel
}

// Publish отправляет копию комментария всем подписчикам поста и никогда не ждет.
// Подписчик с заполненным буфером пропускает комментарий.
func (m *SubscriptionManager) Publish(postID uint, comment *models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[postID] {
		cp := *comment
		select {
		case sub <- &cp:
		default:
		}
	}
}

// Subscribers возвращает число активных подписчиков поста
func (m *SubscriptionManager) Subscribers(postID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[postID])
}
