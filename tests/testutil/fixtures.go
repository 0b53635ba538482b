package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changeproxy/internal/models/m_element"
)

// NewOwnerKey returns a fresh record key.
func NewOwnerKey() string {
	return "rec-" + uuid.NewString()
}

// SeedList stores elems as a list field, positions 0..n-1.
func SeedList(t *testing.T, client *spanner.Client, owner, field string, elems ...any) {
	t.Helper()
	seed(t, client, owner, field, false, elems)
}

// SeedSet stores elems as a set field keyed by element.
func SeedSet(t *testing.T, client *spanner.Client, owner, field string, elems ...any) {
	t.Helper()
	seed(t, client, owner, field, true, elems)
}

func seed(t *testing.T, client *spanner.Client, owner, field string, byElement bool, elems []any) {
	t.Helper()

	model := m_element.NewModel()
	muts := make([]*spanner.Mutation, 0, len(elems))
	for i, e := range elems {
		payload, err := json.Marshal(e)
		require.NoError(t, err)
		key := fmt.Sprintf("%012d", i)
		if byElement {
			key = string(payload)
		}
		muts = append(muts, model.UpsertMut(&m_element.Data{
			OwnerKey: owner,
			Field:    field,
			ElemKey:  key,
			Seq:      int64(i),
			Payload:  payload,
		}))
	}

	_, err := client.Apply(context.Background(), muts)
	require.NoError(t, err, "failed to seed %s.%s", owner, field)
}
