package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps the session record in a redis hash, for agents that
// share one signed-in student across processes.
type RedisStore struct {
	client *redis.Client
	key    string
	notifier
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load() (Record, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Record{}, fmt.Errorf("failed to load session: %w", err)
	}
	return Record{
		AccessToken: fields["accessToken"],
		FirstName:   fields["firstName"],
		LastName:    fields["lastName"],
		Theme:       fields["theme"],
	}, nil
}

func (s *RedisStore) SetToken(token string) error {
	return s.set(map[string]interface{}{"accessToken": token})
}

func (s *RedisStore) SetProfile(firstName, lastName string) error {
	return s.set(map[string]interface{}{
		"firstName": firstName,
		"lastName":  lastName,
	})
}

func (s *RedisStore) SetTheme(theme string) error {
	return s.set(map[string]interface{}{"theme": theme})
}

func (s *RedisStore) Clear() error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.publish(Record{})
	return nil
}

func (s *RedisStore) set(fields map[string]interface{}) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.client.HSet(ctx, s.key, fields).Err(); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	rec, err := s.Load()
	if err != nil {
		return err
	}
	s.publish(rec)
	return nil
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
