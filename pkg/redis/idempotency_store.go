package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const processingMarker = "processing"

// StoredResponse is a replayable HTTP response
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

// IdempotencyStore keeps per-key request state with expiry:
// absent, in progress, or finished with a stored response.
type IdempotencyStore struct {
	client    *Client
	prefix    string
	lockTTL   time.Duration
	retention time.Duration
}

// NewIdempotencyStore creates a store namespaced under prefix
func NewIdempotencyStore(client *Client, prefix string, lockTTL, retention time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		client:    client,
		prefix:    prefix,
		lockTTL:   lockTTL,
		retention: retention,
	}
}

func (s *IdempotencyStore) key(scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, scope, key)
}

// Lookup returns the stored response, or inProgress when another request holds the key.
// Both are zero when the key is unknown.
func (s *IdempotencyStore) Lookup(ctx context.Context, scope, key string) (resp *StoredResponse, inProgress bool, err error) {
	val, err := s.client.Get(ctx, s.key(scope, key))
	if IsNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if val == processingMarker {
		return nil, true, nil
	}

	var stored StoredResponse
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		return nil, false, err
	}
	return &stored, false, nil
}

// Reserve marks the key in progress. It returns false when the key is already taken.
func (s *IdempotencyStore) Reserve(ctx context.Context, scope, key string) (bool, error) {
	return s.client.SetNX(ctx, s.key(scope, key), processingMarker, s.lockTTL)
}

// Complete stores the final response for replay
func (s *IdempotencyStore) Complete(ctx context.Context, scope, key string, resp *StoredResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(scope, key), payload, s.retention)
}

// Release forgets the key so the request can be retried
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	return s.client.Del(ctx, s.key(scope, key))
}
