package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrHostNotFound = errors.New("host not found")
	ErrEmptyHostID  = errors.New("host id is empty")
)

const hostKeyPrefix = "host:"

// HostRepository maps a host id to the address guests dial. Entries expire
// unless the host keeps registering.
type HostRepository interface {
	Register(ctx context.Context, hostID, addr string, ttl time.Duration) error
	Resolve(ctx context.Context, hostID string) (string, error)
	Unregister(ctx context.Context, hostID string) error
}

type dbHost struct {
	client *redis.Client
}

func NewHostRepository(client *redis.Client) HostRepository {
	return &dbHost{
		client: client,
	}
}

func hostKey(hostID string) string {
	return hostKeyPrefix + hostID
}

func (that *dbHost) Register(ctx context.Context, hostID, addr string, ttl time.Duration) error {
	if hostID == "" {
		return ErrEmptyHostID
	}

	if err := that.client.Set(ctx, hostKey(hostID), addr, ttl).Err(); err != nil {
		return fmt.Errorf("failed to register host: %w", err)
	}

	return nil
}

func (that *dbHost) Resolve(ctx context.Context, hostID string) (string, error) {
	if hostID == "" {
		return "", ErrEmptyHostID
	}

	addr, err := that.client.Get(ctx, hostKey(hostID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrHostNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to resolve host: %w", err)
	}

	return addr, nil
}

func (that *dbHost) Unregister(ctx context.Context, hostID string) error {
	if err := that.client.Del(ctx, hostKey(hostID)).Err(); err != nil {
		return fmt.Errorf("failed to unregister host: %w", err)
	}

	return nil
}
