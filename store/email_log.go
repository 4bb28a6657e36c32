package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/library/backend/models"
)

// MaxEmailLogs is the most entries one listing returns.
const MaxEmailLogs = 200

// InsertEmailLog records one notification attempt.
func (m *Mongo) InsertEmailLog(ctx context.Context, log *models.EmailLog) error {
	_, err := m.EmailLogs().InsertOne(ctx, log, options.InsertOne())
	return err
}

// ListEmailLogs returns the newest entries, optionally only those sent to toEmail.
func (m *Mongo) ListEmailLogs(ctx context.Context, toEmail string, limit int64) ([]models.EmailLog, error) {
	if limit <= 0 || limit > MaxEmailLogs {
		limit = MaxEmailLogs
	}
	filter := bson.M{}
	if toEmail != "" {
		filter["toEmail"] = toEmail
	}
	cur, err := m.EmailLogs().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	logs := []models.EmailLog{}
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
