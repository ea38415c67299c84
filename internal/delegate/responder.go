// Package delegate generates stand-in replies for offline users in private
// conversations. A reply is scheduled when a message lands, re-validated
// when it fires, and re-ingested through the normal send path so it gets
// the same persistence and fan-out as any other message.
package delegate

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YasiruRavidith/Chat-Room/internal/config"
	"github.com/YasiruRavidith/Chat-Room/internal/genai"
	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/YasiruRavidith/Chat-Room/internal/repository"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
)

// Ingestor is the send path replies go back through.
type Ingestor interface {
	Submit(senderID, groupID uint, input service.SubmitMessageInput) (*models.Message, error)
}

// AttachmentFetcher loads attachment bytes for image context. Optional;
// when nil, image messages contribute a text placeholder only.
type AttachmentFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, string, error)
}

type Responder struct {
	messageRepo repository.MessageRepositoryInterface
	groupRepo   repository.GroupRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	presence    service.PresenceChecker
	generator   genai.Generator
	attachments AttachmentFetcher
	ingestor    Ingestor

	window int
	params genai.Params
}

func NewResponder(
	messageRepo repository.MessageRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	presence service.PresenceChecker,
	generator genai.Generator,
	attachments AttachmentFetcher,
	ingestor Ingestor,
	cfg config.Config,
) *Responder {
	window := cfg.Delegate.ContextWindow
	if window <= 0 {
		window = 100
	}
	return &Responder{
		messageRepo: messageRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		presence:    presence,
		generator:   generator,
		attachments: attachments,
		ingestor:    ingestor,
		window:      window,
		params: genai.Params{
			MaxOutputTokens: cfg.GenAI.MaxTokens,
			Temperature:     cfg.GenAI.Temperature,
		},
	}
}

// Respond generates and sends a stand-in reply for the message, unless the
// window between scheduling and firing invalidated the trigger: the message
// was deleted, the recipient came online, or delegate mode was switched off.
func (r *Responder) Respond(ctx context.Context, messageID uint) {
	message, err := r.messageRepo.FindByID(messageID)
	if err != nil || message.Deleted || message.Kind == models.DelegateReply {
		return
	}

	group, err := r.groupRepo.FindByID(message.GroupID)
	if err != nil || !group.IsPrivate() {
		return
	}
	recipientID, ok := otherMember(group, message.SenderID)
	if !ok {
		return
	}

	if r.presence != nil && r.presence.IsOnline(recipientID) {
		return
	}
	recipient, err := r.userRepo.FindByID(recipientID)
	if err != nil || !recipient.DelegateEnabled {
		return
	}

	history, err := r.messageRepo.RecentInGroup(message.GroupID, r.window)
	if err != nil {
		zap.L().Warn("delegate history load failed", zap.Uint("group_id", message.GroupID), zap.Error(err))
		history = []models.Message{*message}
	}

	turns := r.buildTurns(ctx, history, recipientID)
	result := r.generator.Generate(ctx, recipient.PersonaPrompt(), turns, r.params)
	if result.Failed() {
		zap.L().Warn("delegate generation failed",
			zap.Uint("message_id", messageID),
			zap.Int("kind", int(result.Kind)),
			zap.Error(result.Err))
	}

	reply := service.SubmitMessageInput{
		ClientID: uuid.NewString(),
		Content:  result.FallbackOrText(),
		Kind:     models.DelegateReply,
	}
	if _, err := r.ingestor.Submit(recipientID, message.GroupID, reply); err != nil {
		zap.L().Error("delegate reply send failed", zap.Uint("group_id", message.GroupID), zap.Error(err))
	}
}

// buildTurns maps the conversation into model turns: the recipient's own
// messages become model turns, the other party's become user turns. Image
// attachments are inlined when they can be fetched.
func (r *Responder) buildTurns(ctx context.Context, history []models.Message, recipientID uint) []genai.Turn {
	turns := make([]genai.Turn, 0, len(history))
	for _, m := range history {
		if m.Deleted {
			continue
		}
		role := genai.RoleUser
		if m.SenderID == recipientID {
			role = genai.RoleModel
		}

		var parts []genai.Part
		if text := strings.TrimSpace(m.Content); text != "" {
			parts = append(parts, genai.Part{Text: text})
		}
		if m.Kind == models.ImageMessage && !m.Attachment.Empty() {
			if part, ok := r.imagePart(ctx, m.Attachment); ok {
				parts = append(parts, part)
			} else if len(parts) == 0 {
				parts = append(parts, genai.Part{Text: "[image: " + m.Attachment.Name + "]"})
			}
		}
		if len(parts) == 0 {
			continue
		}
		turns = append(turns, genai.Turn{Role: role, Parts: parts})
	}
	return turns
}

func (r *Responder) imagePart(ctx context.Context, att models.Attachment) (genai.Part, bool) {
	if r.attachments == nil {
		return genai.Part{}, false
	}
	data, contentType, err := r.attachments.Fetch(ctx, att.Key)
	if err != nil {
		zap.L().Warn("attachment fetch for delegate context failed", zap.String("key", att.Key), zap.Error(err))
		return genai.Part{}, false
	}
	if contentType == "" {
		contentType = att.ContentType
	}
	return genai.Part{ImageData: data, ImageMIME: contentType}, true
}

func otherMember(group *models.Group, senderID uint) (uint, bool) {
	for _, member := range group.Members {
		if member.UserID != senderID {
			return member.UserID, true
		}
	}
	return 0, false
}
