package m_entry

import "time"

// Data is one stored entry of a map field. EntryKey is the encoded key and
// doubles as the row key.
type Data struct {
	OwnerKey     string    `spanner:"owner_key"`
	Field        string    `spanner:"field"`
	EntryKey     string    `spanner:"entry_key"`
	KeyPayload   []byte    `spanner:"key_payload"`
	ValuePayload []byte    `spanner:"value_payload"`
	UpdatedAt    time.Time `spanner:"updated_at"`
}
