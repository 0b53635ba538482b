package m_element

import "time"

// Data is one stored element of a container field.
type Data struct {
	OwnerKey  string    `spanner:"owner_key"`
	Field     string    `spanner:"field"`
	ElemKey   string    `spanner:"elem_key"`
	Seq       int64     `spanner:"seq"`
	Payload   []byte    `spanner:"payload"`
	UpdatedAt time.Time `spanner:"updated_at"`
}
