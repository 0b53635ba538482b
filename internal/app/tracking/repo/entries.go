package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
)

// LoadMap decodes the stored entries of a map field into put.
func LoadMap[K comparable, V any](ctx context.Context, r EntryReader, sess contracts.Session, owner, field string, put func(K, V)) error {
	return r.ReadEntries(ctx, sess, owner, field, func(rawKey, rawValue []byte) error {
		var (
			k K
			v V
		)
		if err := json.Unmarshal(rawKey, &k); err != nil {
			return fmt.Errorf("failed to decode key of %s.%s: %w", owner, field, err)
		}
		if err := json.Unmarshal(rawValue, &v); err != nil {
			return fmt.Errorf("failed to decode value of %s.%s: %w", owner, field, err)
		}
		put(k, v)
		return nil
	})
}
