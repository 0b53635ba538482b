package m_entry

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the map_entries table.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		[]string{OwnerKey, Field, EntryKey, KeyPayload, ValuePayload, UpdatedAt},
		[]interface{}{
			data.OwnerKey,
			data.Field,
			data.EntryKey,
			data.KeyPayload,
			data.ValuePayload,
			spanner.CommitTimestamp,
		},
	)
}

func (m *Model) DeleteMut(ownerKey, field, entryKey string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{ownerKey, field, entryKey})
}

// DeleteFieldMut removes every entry of a map field.
func (m *Model) DeleteFieldMut(ownerKey, field string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.KeyRange{
		Start: spanner.Key{ownerKey, field},
		End:   spanner.Key{ownerKey, field},
		Kind:  spanner.ClosedClosed,
	})
}
