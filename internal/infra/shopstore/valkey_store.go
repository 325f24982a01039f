package shopstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/waterbar/waterbar/internal/domain/shop"
)

// ValkeyStore persists recommendation snapshots in a Valkey-compatible
// database so the shop surface survives restarts.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "shop"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Save(ctx context.Context, userID string, recs shop.Recommendations, ttl time.Duration) error {
	payload, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(userID)).Value(string(payload))
	if ttl > 0 {
		return s.client.Do(ctx, builder.Ex(ttl).Build()).Error()
	}
	return s.client.Do(ctx, builder.Build()).Error()
}

func (s *ValkeyStore) Latest(ctx context.Context, userID string) (shop.Recommendations, bool, error) {
	cmd := s.client.B().Get().Key(s.key(userID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return shop.Recommendations{}, false, nil
		}
		return shop.Recommendations{}, false, err
	}
	var recs shop.Recommendations
	if err := json.Unmarshal([]byte(payload), &recs); err != nil {
		return shop.Recommendations{}, false, err
	}
	return recs, true, nil
}

func (s *ValkeyStore) key(userID string) string {
	return fmt.Sprintf("%s:recs:%s", s.prefix, userID)
}
