package m_entry

// Column names of the map_entries table.
const (
	TableName = "map_entries"

	OwnerKey     = "owner_key"
	Field        = "field"
	EntryKey     = "entry_key"
	KeyPayload   = "key_payload"
	ValuePayload = "value_payload"
	UpdatedAt    = "updated_at"
)
