package m_element

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the collection_elements table.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

// UpsertMut writes one element row.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		[]string{OwnerKey, Field, ElemKey, Seq, Payload, UpdatedAt},
		[]interface{}{
			data.OwnerKey,
			data.Field,
			data.ElemKey,
			data.Seq,
			data.Payload,
			spanner.CommitTimestamp,
		},
	)
}

// DeleteMut removes one element row.
func (m *Model) DeleteMut(ownerKey, field, elemKey string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{ownerKey, field, elemKey})
}

// DeleteFieldMut removes every element row of a field.
func (m *Model) DeleteFieldMut(ownerKey, field string) *spanner.Mutation {
	return spanner.Delete(TableName, FieldRange(ownerKey, field))
}

// FieldRange covers all rows of one field.
func FieldRange(ownerKey, field string) spanner.KeyRange {
	return spanner.KeyRange{
		Start: spanner.Key{ownerKey, field},
		End:   spanner.Key{ownerKey, field},
		Kind:  spanner.ClosedClosed,
	}
}

// ReadColumns lists the columns a loader reads, in Data order.
func (m *Model) ReadColumns() []string {
	return []string{OwnerKey, Field, ElemKey, Seq, Payload, UpdatedAt}
}
