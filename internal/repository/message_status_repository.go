package repository

import (
	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"gorm.io/gorm"
)

type MessageStatusRepository struct {
	db *gorm.DB
}

func NewMessageStatusRepository(db *gorm.DB) *MessageStatusRepository {
	return &MessageStatusRepository{db: db}
}

// Upsert merges state into the (message, user) row with rank comparison, so
// concurrent writers from different connections converge without a read-
// modify-write cycle. A transition that ranks below the stored state leaves
// the row untouched and reports false.
func (r *MessageStatusRepository) Upsert(messageID, userID uint, state models.DeliveryState) (bool, error) {
	res := r.db.Exec(`
		INSERT INTO message_statuses (message_id, user_id, state, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON CONFLICT (message_id, user_id) DO UPDATE
		SET state = EXCLUDED.state, updated_at = NOW()
		WHERE CASE message_statuses.state WHEN 'delivered' THEN 1 WHEN 'read' THEN 2 ELSE 0 END
			< CASE EXCLUDED.state WHEN 'delivered' THEN 1 WHEN 'read' THEN 2 ELSE 0 END
	`, messageID, userID, state)
	return res.RowsAffected > 0, res.Error
}

// MarkGroupRead is a single statement, so a crash mid-batch can never leave a
// half-applied set of read receipts. Rows already at read are skipped, which
// makes the returned count the number of newly-affected rows.
func (r *MessageStatusRepository) MarkGroupRead(groupID, userID uint) (int64, error) {
	res := r.db.Exec(`
		INSERT INTO message_statuses (message_id, user_id, state, created_at, updated_at)
		SELECT m.id, ?, 'read', NOW(), NOW()
		FROM messages m
		WHERE m.group_id = ? AND m.sender_id <> ? AND m.deleted = false
		ON CONFLICT (message_id, user_id) DO UPDATE
		SET state = 'read', updated_at = NOW()
		WHERE message_statuses.state <> 'read'
	`, userID, groupID, userID)
	return res.RowsAffected, res.Error
}

// Aggregate rolls recipient rows up into the sender-facing status: read if
// any non-sender has read, else delivered if any has delivered, else sent.
func (r *MessageStatusRepository) Aggregate(messageID, senderID uint) (models.DeliveryState, error) {
	var rank int
	err := r.db.Model(&models.MessageStatus{}).
		Select("COALESCE(MAX(CASE state WHEN 'read' THEN 2 WHEN 'delivered' THEN 1 ELSE 0 END), 0)").
		Where("message_id = ? AND user_id <> ?", messageID, senderID).
		Scan(&rank).Error
	if err != nil {
		return models.StateSent, err
	}
	switch rank {
	case 2:
		return models.StateRead, nil
	case 1:
		return models.StateDelivered, nil
	}
	return models.StateSent, nil
}
