package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const AdminActivitySchemaTextV1 = `{
	"type": "record",
	"namespace": "ecom.admin",
	"name": "admin_activity",
	"fields": [
		{"name": "event_id", "type": "string"},
		{"name": "resource", "type": "string"},
		{"name": "action", "type": "string"},
		{"name": "entity_id", "type": "string"},
		{"name": "admin", "type": "string"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

// AdminActivityV1 is one successful dashboard mutation.
type AdminActivityV1 struct {
	EventID    string    `avro:"event_id"`
	Resource   string    `avro:"resource"`
	Action     string    `avro:"action"`
	EntityID   string    `avro:"entity_id"`
	Admin      string    `avro:"admin"`
	OccurredAt time.Time `avro:"occurred_at"`
}

func AdminActivityV1Avro() avro.Schema {
	return avro.MustParse(AdminActivitySchemaTextV1)
}
