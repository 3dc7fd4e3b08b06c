// Package mongostore реализует документный провайдер хранения на MongoDB.
// Записи лежат в коллекции defaulters, сессия администратора в sessions.
// Изменения других экземпляров приходят через change stream.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/lendlens/internal/lib/sl"
	"github.com/magabrotheeeer/lendlens/internal/models"
	"github.com/magabrotheeeer/lendlens/internal/storage"
)

const (
	defaultersCollection = "defaulters"
	sessionsCollection   = "sessions"
	currentSessionID     = "current"
)

// Storage хранит клиент и коллекции.
type Storage struct {
	client     *mongo.Client
	defaulters *mongo.Collection
	sessions   *mongo.Collection
}

// New подключается к MongoDB, проверяет соединение и создаёт индекс порядка вставки.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongo.New"

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db := client.Database(database)
	s := &Storage{
		client:     client,
		defaulters: db.Collection(defaultersCollection),
		sessions:   db.Collection(sessionsCollection),
	}

	_, err = s.defaulters.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "seq", Value: 1}}})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// CreateRecord вставляет документ записи.
func (s *Storage) CreateRecord(ctx context.Context, d models.Defaulter) (string, error) {
	const op = "storage.mongo.CreateRecord"
	doc := toDoc(d)
	doc.Seq = time.Now().UnixNano()
	if _, err := s.defaulters.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return d.ID, nil
}

// UpdateRecord обновляет флаги enabled и is_expired.
func (s *Storage) UpdateRecord(ctx context.Context, d models.Defaulter) error {
	const op = "storage.mongo.UpdateRecord"
	res, err := s.defaulters.UpdateByID(ctx, d.ID, bson.M{"$set": bson.M{
		"enabled":    d.Enabled,
		"is_expired": d.IsExpired,
	}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// ListRecords возвращает все записи в порядке вставки.
func (s *Storage) ListRecords(ctx context.Context) ([]models.Defaulter, error) {
	const op = "storage.mongo.ListRecords"
	cur, err := s.defaulters.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var docs []defaulterDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]models.Defaulter, 0, len(docs))
	for _, doc := range docs {
		d, err := doc.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, d)
	}
	return result, nil
}

// ResubscribeDelay — пауза перед повторным открытием change stream.
var ResubscribeDelay = time.Second

// Subscribe открывает change stream коллекции defaulters.
// Требует replica set; на одиночном сервере возвращает ошибку.
// Оборванный stream открывается заново.
func (s *Storage) Subscribe(ctx context.Context, log *slog.Logger, onChange func()) error {
	const op = "storage.mongo.Subscribe"
	stream, err := s.defaulters.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		for {
			for stream.Next(ctx) {
				onChange()
			}
			err := stream.Err()
			_ = stream.Close(context.Background())
			if ctx.Err() != nil {
				return
			}
			log.Warn("change stream interrupted, resubscribing", slog.String("op", op), sl.Err(err))

			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(ResubscribeDelay):
				}
				stream, err = s.defaulters.Watch(ctx, mongo.Pipeline{})
				if err == nil {
					break
				}
				if ctx.Err() != nil {
					return
				}
				log.Warn("failed to reopen change stream", slog.String("op", op), sl.Err(err))
			}
			log.Info("change stream resubscribed", slog.String("op", op))
			onChange()
		}
	}()
	return nil
}

// LoadSession возвращает сохранённую сессию.
func (s *Storage) LoadSession(ctx context.Context) (models.Session, error) {
	const op = "storage.mongo.LoadSession"
	var doc sessionDoc
	err := s.sessions.FindOne(ctx, bson.M{"_id": currentSessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Session{}, storage.ErrNoSession
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toModel(), nil
}

// SaveSession заменяет сохранённую сессию.
func (s *Storage) SaveSession(ctx context.Context, session models.Session) error {
	const op = "storage.mongo.SaveSession"
	_, err := s.sessions.ReplaceOne(ctx, bson.M{"_id": currentSessionID}, toSessionDoc(session),
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearSession удаляет сохранённую сессию.
func (s *Storage) ClearSession(ctx context.Context) error {
	const op = "storage.mongo.ClearSession"
	if _, err := s.sessions.DeleteOne(ctx, bson.M{"_id": currentSessionID}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close отключает клиента.
func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
