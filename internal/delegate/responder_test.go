package delegate

import (
	"context"
	"sort"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/YasiruRavidith/Chat-Room/internal/config"
	"github.com/YasiruRavidith/Chat-Room/internal/genai"
	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
	"github.com/YasiruRavidith/Chat-Room/internal/testutil"
)

type mockMessageRepo struct {
	messages map[uint]*models.Message
}

func (m *mockMessageRepo) Create(message *models.Message) error {
	m.messages[message.ID] = message
	return nil
}

func (m *mockMessageRepo) FindByID(id uint) (*models.Message, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) RecentInGroup(groupID uint, limit int) ([]models.Message, error) {
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

func (m *mockMessageRepo) SoftDelete(messageID, senderID uint) error {
	return nil
}

type mockGroupRepo struct {
	groups map[uint]*models.Group
}

func (m *mockGroupRepo) FindByID(id uint) (*models.Group, error) {
	if group, ok := m.groups[id]; ok {
		return group, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) IsMember(groupID, userID uint) (bool, error) { return true, nil }

func (m *mockGroupRepo) GetMembers(groupID uint) ([]models.User, error) { return nil, nil }

func (m *mockGroupRepo) MemberIDs(groupID uint) ([]uint, error) { return nil, nil }

func (m *mockGroupRepo) GroupIDsForUser(userID uint) ([]uint, error) { return nil, nil }

type mockUserRepo struct {
	users map[uint]*models.User
}

func (m *mockUserRepo) FindByID(id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByUsername(username string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdateOnlineStatus(userID uint, isOnline bool) error { return nil }

func (m *mockUserRepo) UpdateDelegateSettings(userID uint, enabled bool, prompt string) error {
	return nil
}

type stubPresence struct {
	online map[uint]bool
}

func (s *stubPresence) IsOnline(userID uint) bool { return s.online[userID] }

type stubGenerator struct {
	result genai.Result

	system string
	turns  []genai.Turn
	called bool
}

func (g *stubGenerator) Generate(ctx context.Context, system string, turns []genai.Turn, params genai.Params) genai.Result {
	g.called = true
	g.system = system
	g.turns = turns
	return g.result
}

type recordingIngestor struct {
	mu        sync.Mutex
	senderIDs []uint
	groupIDs  []uint
	inputs    []service.SubmitMessageInput
}

func (r *recordingIngestor) Submit(senderID, groupID uint, input service.SubmitMessageInput) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senderIDs = append(r.senderIDs, senderID)
	r.groupIDs = append(r.groupIDs, groupID)
	r.inputs = append(r.inputs, input)
	return &models.Message{ID: 100, GroupID: groupID, SenderID: senderID}, nil
}

func (r *recordingIngestor) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inputs)
}

type responderFixture struct {
	messages  *mockMessageRepo
	groups    *mockGroupRepo
	users     *mockUserRepo
	presence  *stubPresence
	generator *stubGenerator
	ingestor  *recordingIngestor
	responder *Responder
}

func newResponderFixture() *responderFixture {
	f := &responderFixture{
		messages:  &mockMessageRepo{messages: make(map[uint]*models.Message)},
		groups:    &mockGroupRepo{groups: make(map[uint]*models.Group)},
		users:     &mockUserRepo{users: make(map[uint]*models.User)},
		presence:  &stubPresence{online: make(map[uint]bool)},
		generator: &stubGenerator{result: genai.OK("Generated reply")},
		ingestor:  &recordingIngestor{},
	}
	cfg := config.Config{}
	cfg.Delegate.ContextWindow = 100
	cfg.GenAI.MaxTokens = 1000
	cfg.GenAI.Temperature = 0.7
	f.responder = NewResponder(f.messages, f.groups, f.users, f.presence, f.generator, nil, f.ingestor, cfg)
	return f
}

// seed: private group 1 with alice(1) and bob(2), bob offline with
// delegate on, and message 1 from alice.
func (f *responderFixture) seed() {
	f.users.users[1] = testutil.User(1, "alice")
	bob := testutil.User(2, "bob")
	bob.DelegateEnabled = true
	f.users.users[2] = bob
	f.groups.groups[1] = testutil.Group(1, models.PrivateGroup, 1, 2)
	f.messages.messages[1] = testutil.Message(1, 1, 1, "are you around?")
}

func TestRespondSendsGeneratedReply(t *testing.T) {
	f := newResponderFixture()
	f.seed()

	f.responder.Respond(context.Background(), 1)

	if len(f.ingestor.inputs) != 1 {
		t.Fatalf("ingestor received %d submissions, want 1", len(f.ingestor.inputs))
	}
	if f.ingestor.senderIDs[0] != 2 {
		t.Errorf("reply authored by %d, want recipient 2", f.ingestor.senderIDs[0])
	}
	if f.ingestor.groupIDs[0] != 1 {
		t.Errorf("reply sent to group %d, want 1", f.ingestor.groupIDs[0])
	}
	reply := f.ingestor.inputs[0]
	if reply.Kind != models.DelegateReply {
		t.Errorf("reply kind = %q, want delegate_reply", reply.Kind)
	}
	if reply.Content != "Generated reply" {
		t.Errorf("reply content = %q", reply.Content)
	}
	if reply.ClientID == "" {
		t.Error("reply has no client id")
	}
}

func TestRespondUsesPersonaPrompt(t *testing.T) {
	f := newResponderFixture()
	f.seed()

	f.responder.Respond(context.Background(), 1)
	if f.generator.system != models.DefaultDelegatePrompt {
		t.Errorf("system = %q, want default persona prompt", f.generator.system)
	}

	f.users.users[2].DelegatePrompt = "Answer like a pirate."
	f.responder.Respond(context.Background(), 1)
	if f.generator.system != "Answer like a pirate." {
		t.Errorf("system = %q, want custom prompt", f.generator.system)
	}
}

func TestRespondMapsRoles(t *testing.T) {
	f := newResponderFixture()
	f.seed()
	f.messages.messages[2] = &models.Message{
		ID: 2, GroupID: 1, SenderID: 2,
		Kind: models.TextMessage, Content: "earlier reply from bob",
	}

	f.responder.Respond(context.Background(), 1)

	if len(f.generator.turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(f.generator.turns))
	}
	if f.generator.turns[0].Role != genai.RoleUser {
		t.Errorf("alice's turn role = %q, want user", f.generator.turns[0].Role)
	}
	if f.generator.turns[1].Role != genai.RoleModel {
		t.Errorf("bob's turn role = %q, want model", f.generator.turns[1].Role)
	}
}

func TestRespondFallsBackOnGenerationFailure(t *testing.T) {
	f := newResponderFixture()
	f.seed()
	f.generator.result = genai.Fail(genai.FailureUnavailable, context.DeadlineExceeded)

	f.responder.Respond(context.Background(), 1)

	if len(f.ingestor.inputs) != 1 {
		t.Fatalf("ingestor received %d submissions, want 1", len(f.ingestor.inputs))
	}
	if f.ingestor.inputs[0].Content != genai.FallbackReply {
		t.Errorf("reply content = %q, want fallback", f.ingestor.inputs[0].Content)
	}
}

func TestRespondGuards(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *responderFixture)
	}{
		{"Message gone", func(f *responderFixture) {
			delete(f.messages.messages, 1)
		}},
		{"Message deleted", func(f *responderFixture) {
			f.messages.messages[1].Deleted = true
		}},
		{"Message is a delegate reply", func(f *responderFixture) {
			f.messages.messages[1].Kind = models.DelegateReply
		}},
		{"Recipient came online", func(f *responderFixture) {
			f.presence.online[2] = true
		}},
		{"Delegate switched off", func(f *responderFixture) {
			f.users.users[2].DelegateEnabled = false
		}},
		{"Group is not private", func(f *responderFixture) {
			f.groups.groups[1].Kind = models.MultiGroup
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResponderFixture()
			f.seed()
			tt.setup(f)

			f.responder.Respond(context.Background(), 1)

			if f.generator.called {
				t.Error("generator was called despite failed precondition")
			}
			if len(f.ingestor.inputs) != 0 {
				t.Error("reply was sent despite failed precondition")
			}
		})
	}
}

func TestRespondWithoutStorageUsesPlaceholderForImages(t *testing.T) {
	f := newResponderFixture()
	f.seed()
	f.messages.messages[2] = &models.Message{
		ID: 2, GroupID: 1, SenderID: 1,
		Kind:       models.ImageMessage,
		Attachment: models.Attachment{Key: "uploads/cat.jpg", Name: "cat.jpg"},
	}

	f.responder.Respond(context.Background(), 1)

	if len(f.generator.turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(f.generator.turns))
	}
	part := f.generator.turns[1].Parts[0]
	if part.Text == "" || len(part.ImageData) != 0 {
		t.Errorf("image turn part = %+v, want text placeholder", part)
	}
}
