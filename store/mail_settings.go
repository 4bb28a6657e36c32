package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/library/backend/models"
)

const smtpSettingsKey = "smtp"

// GetMailSettings returns the stored SMTP account, or nil if none exists.
func (m *Mongo) GetMailSettings(ctx context.Context) (*models.MailSettings, error) {
	var s models.MailSettings
	err := m.MailSettings().FindOne(ctx, bson.M{"key": smtpSettingsKey}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertMailSettings creates or replaces the SMTP account. The password must already be encrypted.
func (m *Mongo) UpsertMailSettings(ctx context.Context, s *models.MailSettings) error {
	set := bson.M{
		"key":         smtpSettingsKey,
		"host":        s.Host,
		"port":        s.Port,
		"username":    s.Username,
		"password":    s.Password,
		"senderEmail": s.SenderEmail,
		"senderName":  s.SenderName,
		"updatedAt":   s.UpdatedAt,
	}
	opts := options.Update().SetUpsert(true)
	_, err := m.MailSettings().UpdateOne(ctx, bson.M{"key": smtpSettingsKey}, bson.M{"$set": set}, opts)
	return err
}
