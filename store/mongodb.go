package store

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo holds the document collections used for notification bookkeeping.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string, logger *slog.Logger) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	logger.Info("connected to MongoDB", "db", dbName)
	return &Mongo{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *Mongo) EmailLogs() *mongo.Collection {
	return m.Database.Collection("email_logs")
}

func (m *Mongo) MailSettings() *mongo.Collection {
	return m.Database.Collection("mail_settings")
}

// EnsureIndexes creates the sentAt index on email_logs and the unique key on mail_settings.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.EmailLogs().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sentAt", Value: -1}}},
		{Keys: bson.D{{Key: "toEmail", Value: 1}, {Key: "sentAt", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = m.MailSettings().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}
