package service

import (
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/YasiruRavidith/Chat-Room/internal/broker"
	"github.com/YasiruRavidith/Chat-Room/internal/models"
)

// MockUserRepository is an in-memory UserRepositoryInterface for testing
type MockUserRepository struct {
	users map[uint]*models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User)}
}

func (m *MockUserRepository) Add(user *models.User) {
	m.users[user.ID] = user
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) UpdateOnlineStatus(userID uint, isOnline bool) error {
	if user, ok := m.users[userID]; ok {
		user.IsOnline = isOnline
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *MockUserRepository) UpdateDelegateSettings(userID uint, enabled bool, prompt string) error {
	if user, ok := m.users[userID]; ok {
		user.DelegateEnabled = enabled
		user.DelegatePrompt = prompt
		return nil
	}
	return gorm.ErrRecordNotFound
}

// MockGroupRepository is an in-memory GroupRepositoryInterface for testing
type MockGroupRepository struct {
	groups map[uint]*models.Group
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{groups: make(map[uint]*models.Group)}
}

func (m *MockGroupRepository) Add(group *models.Group) {
	m.groups[group.ID] = group
}

func (m *MockGroupRepository) FindByID(id uint) (*models.Group, error) {
	if group, ok := m.groups[id]; ok {
		copied := *group
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	group, ok := m.groups[groupID]
	if !ok {
		return false, nil
	}
	for _, member := range group.Members {
		if member.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockGroupRepository) GetMembers(groupID uint) ([]models.User, error) {
	group, ok := m.groups[groupID]
	if !ok {
		return nil, nil
	}
	members := make([]models.User, 0, len(group.Members))
	for _, member := range group.Members {
		members = append(members, member.User)
	}
	return members, nil
}

func (m *MockGroupRepository) MemberIDs(groupID uint) ([]uint, error) {
	group, ok := m.groups[groupID]
	if !ok {
		return nil, nil
	}
	ids := make([]uint, 0, len(group.Members))
	for _, member := range group.Members {
		ids = append(ids, member.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MockGroupRepository) GroupIDsForUser(userID uint) ([]uint, error) {
	var ids []uint
	for id, group := range m.groups {
		for _, member := range group.Members {
			if member.UserID == userID {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// MockMessageRepository is an in-memory MessageRepositoryInterface for testing
type MockMessageRepository struct {
	messages map[uint]*models.Message
	nextID   uint
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.Message),
		nextID:   1,
	}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	copied := *message
	m.messages[message.ID] = &copied
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	if msg, ok := m.messages[id]; ok {
		copied := *msg
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.SenderID == senderID {
			copied := *msg
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) RecentInGroup(groupID uint, limit int) ([]models.Message, error) {
	var result []models.Message
	for _, msg := range m.messages {
		if msg.GroupID == groupID && !msg.Deleted {
			result = append(result, *msg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

func (m *MockMessageRepository) SoftDelete(messageID, senderID uint) error {
	msg, ok := m.messages[messageID]
	if !ok || msg.SenderID != senderID || msg.Deleted {
		return gorm.ErrRecordNotFound
	}
	msg.Deleted = true
	return nil
}

// MockStatusRepository mirrors the monotonic upsert semantics in memory
type MockStatusRepository struct {
	states map[[2]uint]models.DeliveryState
}

func NewMockStatusRepository() *MockStatusRepository {
	return &MockStatusRepository{states: make(map[[2]uint]models.DeliveryState)}
}

func (m *MockStatusRepository) Upsert(messageID, userID uint, state models.DeliveryState) (bool, error) {
	key := [2]uint{messageID, userID}
	current, ok := m.states[key]
	if ok && current.Rank() >= state.Rank() {
		return false, nil
	}
	m.states[key] = state
	return true, nil
}

func (m *MockStatusRepository) markGroupRead(messages map[uint]*models.Message, groupID, userID uint) int64 {
	var count int64
	for _, msg := range messages {
		if msg.GroupID != groupID || msg.SenderID == userID || msg.Deleted {
			continue
		}
		if changed, _ := m.Upsert(msg.ID, userID, models.StateRead); changed {
			count++
		}
	}
	return count
}

func (m *MockStatusRepository) Aggregate(messageID, senderID uint) (models.DeliveryState, error) {
	best := models.StateSent
	for key, state := range m.states {
		if key[0] != messageID || key[1] == senderID {
			continue
		}
		if state.Rank() > best.Rank() {
			best = state
		}
	}
	return best, nil
}

// statusRepoWithMessages binds MarkGroupRead to a message repository so the
// group scan sees the same data set as the service under test.
type statusRepoWithMessages struct {
	*MockStatusRepository
	messages *MockMessageRepository
}

func (s *statusRepoWithMessages) MarkGroupRead(groupID, userID uint) (int64, error) {
	return s.markGroupRead(s.messages.messages, groupID, userID), nil
}

// recordingBroker captures every published event
type recordingBroker struct {
	mu     sync.Mutex
	topics []string
	events []interface{}
}

func (b *recordingBroker) Publish(topic string, event interface{}) error {
	b.mu.Lock()
	b.topics = append(b.topics, topic)
	b.events = append(b.events, event)
	b.mu.Unlock()
	return nil
}

func (b *recordingBroker) Subscribe(topic string, sub broker.Subscriber) {}

func (b *recordingBroker) Unsubscribe(topic string, sub broker.Subscriber) {}

func (b *recordingBroker) Close() error { return nil }

func (b *recordingBroker) published() ([]string, []interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	topics := make([]string, len(b.topics))
	copy(topics, b.topics)
	events := make([]interface{}, len(b.events))
	copy(events, b.events)
	return topics, events
}
