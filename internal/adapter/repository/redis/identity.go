package redis

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const identityPrefix = "econ:identity:"

// Identity implements usecase.IdentityService backed by Redis. Name lookups
// are case-insensitive; the id-to-name mapping is kept alongside so renames
// overwrite cleanly.
type Identity struct {
	client *redis.Client
}

// NewIdentity creates a new Identity service.
func NewIdentity(client *redis.Client) *Identity {
	return &Identity{client: client}
}

// Resolve returns the external id registered for name, if any.
func (i *Identity) Resolve(ctx context.Context, name string) (uuid.UUID, bool, error) {
	val, err := i.client.Get(ctx, identityPrefix+"name:"+strings.ToLower(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil
		}

		return uuid.Nil, false, err
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, err
	}

	return id, true, nil
}

// Store registers a name and id pair, replacing any previous name held by
// the same id.
func (i *Identity) Store(ctx context.Context, id uuid.UUID, name string) error {
	idKey := identityPrefix + "id:" + id.String()

	previous, err := i.client.Get(ctx, idKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if previous != "" && !strings.EqualFold(previous, name) {
		if err := i.client.Del(ctx, identityPrefix+"name:"+strings.ToLower(previous)).Err(); err != nil {
			return err
		}
	}

	pipe := i.client.TxPipeline()
	pipe.Set(ctx, identityPrefix+"name:"+strings.ToLower(name), id.String(), 0)
	pipe.Set(ctx, idKey, name, 0)

	_, err = pipe.Exec(ctx)

	return err
}
