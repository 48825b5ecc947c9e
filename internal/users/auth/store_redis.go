// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phamduyan/taskora/internal/platform/constants"
)

// # Access-Token Denylist

// RedisDenyList implements DenyList using Redis.
//
// Access tokens verify statelessly; the denylist is the one stateful check
// that lets a revoked session's outstanding access token die early instead
// of coasting to its natural expiry.
type RedisDenyList struct {
	client *redis.Client
}

// NewDenyList creates a new Redis-backed DenyList.
func NewDenyList(client *redis.Client) *RedisDenyList {
	return &RedisDenyList{client: client}
}

/*
Add denylists an access-token ID.

Description: The TTL bounds the entry's life to the window in which the
token could still be replayed; Redis expires it on its own afterwards.

Parameters:
  - context: context.Context
  - tokenID: string (jti claim)
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (denyList *RedisDenyList) Add(context context.Context, tokenID string, ttl time.Duration) error {

	// Use constants for key prefix
	key := fmt.Sprintf("%s%s", constants.RedisPrefixDeniedAccess, tokenID)

	// Guard against non-positive TTLs; the token is already dead.
	if ttl <= 0 {
		return nil
	}

	// Set the marker with TTL
	if err := denyList.client.Set(context, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_denylist_add_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Contains reports whether an access-token ID has been denylisted.

Parameters:
  - context: context.Context
  - tokenID: string

Returns:
  - bool: True if the token was revoked early
  - error: Connectivity errors
*/
func (denyList *RedisDenyList) Contains(context context.Context, tokenID string) (bool, error) {

	// Use constants for key prefix
	key := fmt.Sprintf("%s%s", constants.RedisPrefixDeniedAccess, tokenID)

	// Probe the marker
	_, err := denyList.client.Get(context, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_denylist_contains_failed: %w", err)
	}

	// Marker present: the token was revoked early
	return true, nil
}
