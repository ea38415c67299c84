package service

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/YasiruRavidith/Chat-Room/internal/broker"
	"github.com/YasiruRavidith/Chat-Room/internal/cache"
	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/YasiruRavidith/Chat-Room/internal/repository"
	"github.com/YasiruRavidith/Chat-Room/internal/validation"
)

const defaultHistoryLimit = 50

// PresenceChecker answers whether a user has at least one live connection.
type PresenceChecker interface {
	IsOnline(userID uint) bool
}

// DelegateScheduler receives every committed message that may warrant an
// automatic stand-in reply. Implemented by the delegate package; wired in
// after construction to keep the dependency one-way.
type DelegateScheduler interface {
	MessageCreated(message *models.Message)
}

type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
	groupRepo   repository.GroupRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	statusRepo  repository.MessageStatusRepositoryInterface
	broker      broker.Broker
	msgCache    *cache.MessageCache
	presence    PresenceChecker

	delegate DelegateScheduler
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	statusRepo repository.MessageStatusRepositoryInterface,
	b broker.Broker,
	msgCache *cache.MessageCache,
	presence PresenceChecker,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		statusRepo:  statusRepo,
		broker:      b,
		msgCache:    msgCache,
		presence:    presence,
	}
}

func (s *MessageService) SetDelegateScheduler(d DelegateScheduler) {
	s.delegate = d
}

type SubmitMessageInput struct {
	ClientID   string             `json:"client_id"`
	Content    string             `json:"content"`
	Kind       models.MessageType `json:"kind"`
	Attachment models.Attachment  `json:"attachment"`
}

// Submit commits a message to a group and fans it out. The ClientID makes
// retries idempotent: a duplicate returns the already-committed message and
// performs no side effects. Persistence failures are fatal; broadcast
// failures are not, readers catch up from history.
func (s *MessageService) Submit(senderID, groupID uint, input SubmitMessageInput) (*models.Message, error) {
	input.Content = validation.TrimAndLimit(input.Content, validation.MaxMessageLength())
	if !validation.ValidateClientID(input.ClientID) {
		return nil, ErrMalformed
	}
	if input.Content == "" && input.Attachment.Empty() {
		return nil, ErrMalformed
	}
	if input.Kind == "" {
		input.Kind = models.TextMessage
	}

	member, err := s.groupRepo.IsMember(groupID, senderID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotAMember
	}

	if existing, err := s.messageRepo.FindByClientID(input.ClientID, senderID); err == nil && existing != nil {
		return existing, nil
	}

	message := &models.Message{
		ClientID:   input.ClientID,
		GroupID:    groupID,
		SenderID:   senderID,
		Kind:       input.Kind,
		Content:    input.Content,
		Attachment: input.Attachment,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	// Reload to pick up the sender association for the outbound payload.
	loaded, err := s.messageRepo.FindByID(message.ID)
	if err != nil {
		loaded = message
	}

	if s.msgCache != nil {
		if err := s.msgCache.InvalidateGroup(groupID); err != nil {
			zap.L().Warn("history cache invalidation failed", zap.Uint("group_id", groupID), zap.Error(err))
		}
	}

	s.broadcast(broker.GroupTopic(groupID), NewChatMessageEvent(loaded))
	s.notifyMembers(loaded)
	s.maybeScheduleDelegate(loaded)

	return loaded, nil
}

// notifyMembers pings each other member's personal topic so clients not
// subscribed to the group topic can raise unread badges.
func (s *MessageService) notifyMembers(message *models.Message) {
	memberIDs, err := s.groupRepo.MemberIDs(message.GroupID)
	if err != nil {
		zap.L().Warn("member lookup for notification failed", zap.Uint("group_id", message.GroupID), zap.Error(err))
		return
	}
	event := NewMessageNotification{
		Type:      "new_message",
		GroupID:   message.GroupID,
		MessageID: message.ID,
		SenderID:  message.SenderID,
		Preview:   preview(message.Content),
	}
	for _, id := range memberIDs {
		if id == message.SenderID {
			continue
		}
		s.broadcast(broker.UserTopic(id), event)
	}
}

// maybeScheduleDelegate hands the message to the delegate scheduler when it
// could warrant a stand-in reply: a private conversation whose other party
// is offline with delegate mode on. Replies authored by a delegate never
// trigger another one.
func (s *MessageService) maybeScheduleDelegate(message *models.Message) {
	if s.delegate == nil || message.Kind == models.DelegateReply {
		return
	}
	group, err := s.groupRepo.FindByID(message.GroupID)
	if err != nil || !group.IsPrivate() {
		return
	}
	for _, member := range group.Members {
		if member.UserID == message.SenderID {
			continue
		}
		if s.presence != nil && s.presence.IsOnline(member.UserID) {
			continue
		}
		recipient, err := s.userRepo.FindByID(member.UserID)
		if err != nil || !recipient.DelegateEnabled {
			continue
		}
		s.delegate.MessageCreated(message)
		return
	}
}

// SetStatus applies a delivered/read receipt from userID to a single
// message. State only moves forward; a stale receipt is a silent no-op.
func (s *MessageService) SetStatus(userID, messageID uint, state models.DeliveryState) error {
	if !state.Valid() || state == models.StateSent {
		return ErrMalformed
	}
	message, err := s.findMessage(messageID)
	if err != nil {
		return err
	}
	if message.SenderID == userID {
		return ErrMalformed
	}
	member, err := s.groupRepo.IsMember(message.GroupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotAMember
	}

	changed, err := s.statusRepo.Upsert(messageID, userID, state)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	aggregate, err := s.statusRepo.Aggregate(messageID, message.SenderID)
	if err != nil {
		zap.L().Warn("status aggregate failed", zap.Uint("message_id", messageID), zap.Error(err))
		aggregate = state
	}
	s.broadcast(broker.GroupTopic(message.GroupID), MessageStatusEvent{
		Type:      "message_status",
		GroupID:   message.GroupID,
		MessageID: messageID,
		UserID:    userID,
		State:     aggregate,
	})
	return nil
}

// MarkGroupRead records a read receipt for every message in the group not
// sent by userID, in one statement. Returns the number of receipts that
// actually advanced; calling it again immediately returns zero.
func (s *MessageService) MarkGroupRead(userID, groupID uint) (int64, error) {
	member, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return 0, err
	}
	if !member {
		return 0, ErrNotAMember
	}

	count, err := s.statusRepo.MarkGroupRead(groupID, userID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.broadcast(broker.GroupTopic(groupID), MessageStatusEvent{
			Type:    "message_status",
			GroupID: groupID,
			UserID:  userID,
			State:   models.StateRead,
			Count:   count,
		})
	}
	return count, nil
}

// DeleteMessage soft-deletes; the row stays so ordering and receipts keep
// their anchor. Only the sender may delete.
func (s *MessageService) DeleteMessage(userID, messageID uint) error {
	message, err := s.findMessage(messageID)
	if err != nil {
		return err
	}
	if message.SenderID != userID {
		return ErrUnauthenticated
	}
	if err := s.messageRepo.SoftDelete(messageID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.msgCache != nil {
		if err := s.msgCache.InvalidateGroup(message.GroupID); err != nil {
			zap.L().Warn("history cache invalidation failed", zap.Uint("group_id", message.GroupID), zap.Error(err))
		}
	}
	s.broadcast(broker.GroupTopic(message.GroupID), MessageDeletedEvent{
		Type:      "message_deleted",
		GroupID:   message.GroupID,
		MessageID: messageID,
		UserID:    userID,
	})
	return nil
}

// RecentMessages returns the newest messages of a group in chronological
// order, served from cache when warm.
func (s *MessageService) RecentMessages(userID, groupID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultHistoryLimit
	}
	member, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotAMember
	}

	if s.msgCache != nil && limit == defaultHistoryLimit {
		if messages, ok := s.msgCache.GetGroupRecent(groupID); ok {
			return messages, nil
		}
	}
	messages, err := s.messageRepo.RecentInGroup(groupID, limit)
	if err != nil {
		return nil, err
	}
	if s.msgCache != nil && limit == defaultHistoryLimit {
		if err := s.msgCache.SetGroupRecent(groupID, messages); err != nil {
			zap.L().Warn("history cache fill failed", zap.Uint("group_id", groupID), zap.Error(err))
		}
	}
	return messages, nil
}

// Typing relays a typing indicator to the group topic. Nothing is stored;
// a lost indicator is a lost indicator.
func (s *MessageService) Typing(userID uint, username string, groupID uint, typing bool) error {
	member, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotAMember
	}
	s.broadcast(broker.GroupTopic(groupID), TypingEvent{
		Type:     "typing",
		GroupID:  groupID,
		UserID:   userID,
		Username: username,
		Typing:   typing,
	})
	return nil
}

func (s *MessageService) findMessage(messageID uint) (*models.Message, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if message.Deleted {
		return nil, ErrNotFound
	}
	return message, nil
}

func (s *MessageService) broadcast(topic string, event interface{}) {
	if err := s.broker.Publish(topic, event); err != nil {
		zap.L().Warn("broadcast failed", zap.String("topic", topic), zap.Error(err))
	}
}
