package presence

import (
	"sync"
	"testing"
)

type mockStatusStore struct {
	mu    sync.Mutex
	calls []bool
}

func (m *mockStatusStore) UpdateOnlineStatus(userID uint, isOnline bool) error {
	m.mu.Lock()
	m.calls = append(m.calls, isOnline)
	m.mu.Unlock()
	return nil
}

func (m *mockStatusStore) recorded() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.calls))
	copy(out, m.calls)
	return out
}

func TestConnectMarksOnlineOnce(t *testing.T) {
	store := &mockStatusStore{}
	tracker := NewTracker(store, nil)

	tracker.Connect(1)
	tracker.Connect(1)
	tracker.Connect(1)

	if !tracker.IsOnline(1) {
		t.Fatal("user should be online after connecting")
	}
	if calls := store.recorded(); len(calls) != 1 || !calls[0] {
		t.Errorf("store calls = %v, want exactly one online write", calls)
	}
}

func TestDisconnectMarksOfflineOnlyOnLastConnection(t *testing.T) {
	store := &mockStatusStore{}
	tracker := NewTracker(store, nil)

	tracker.Connect(1)
	tracker.Connect(1)
	tracker.Disconnect(1)

	if !tracker.IsOnline(1) {
		t.Fatal("user with one remaining connection should stay online")
	}

	tracker.Disconnect(1)
	if tracker.IsOnline(1) {
		t.Fatal("user with no connections should be offline")
	}

	calls := store.recorded()
	if len(calls) != 2 || !calls[0] || calls[1] {
		t.Errorf("store calls = %v, want [online offline]", calls)
	}
}

func TestExtraDisconnectsIgnored(t *testing.T) {
	store := &mockStatusStore{}
	tracker := NewTracker(store, nil)

	tracker.Disconnect(1)
	tracker.Connect(1)
	tracker.Disconnect(1)
	tracker.Disconnect(1)

	if tracker.IsOnline(1) {
		t.Fatal("user should be offline")
	}
	if calls := store.recorded(); len(calls) != 2 {
		t.Errorf("store calls = %v, want exactly one online and one offline write", calls)
	}
}

func TestNotifierFiresOnTransitionsOnly(t *testing.T) {
	tracker := NewTracker(&mockStatusStore{}, nil)

	var mu sync.Mutex
	var events []bool
	tracker.SetNotifier(func(userID uint, online bool) {
		mu.Lock()
		events = append(events, online)
		mu.Unlock()
	})

	tracker.Connect(1)
	tracker.Connect(1)
	tracker.Disconnect(1)
	tracker.Disconnect(1)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 || !events[0] || events[1] {
		t.Errorf("notifier events = %v, want [online offline]", events)
	}
}

func TestConcurrentConnectDisconnect(t *testing.T) {
	store := &mockStatusStore{}
	tracker := NewTracker(store, nil)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Connect(1)
		}()
	}
	wg.Wait()

	if !tracker.IsOnline(1) {
		t.Fatal("user should be online with open connections")
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Disconnect(1)
		}()
	}
	wg.Wait()

	if tracker.IsOnline(1) {
		t.Fatal("user should be offline after all connections closed")
	}
}

func TestOnlineUsers(t *testing.T) {
	tracker := NewTracker(&mockStatusStore{}, nil)

	tracker.Connect(1)
	tracker.Connect(2)
	tracker.Connect(2)
	tracker.Disconnect(1)

	users := tracker.OnlineUsers()
	if len(users) != 1 || users[0] != 2 {
		t.Errorf("OnlineUsers() = %v, want [2]", users)
	}
}
