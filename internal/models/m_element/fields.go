package m_element

// Column names of the collection_elements table. Rows are keyed by owner,
// field and element key; lists key by position, sets by encoded element.
const (
	TableName = "collection_elements"

	OwnerKey  = "owner_key"
	Field     = "field"
	ElemKey   = "elem_key"
	Seq       = "seq"
	Payload   = "payload"
	UpdatedAt = "updated_at"
)
