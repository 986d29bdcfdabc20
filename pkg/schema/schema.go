package schema

import (
	"context"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

// AvroDecodeFn expects v to be a pointer.
func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}

// A SchemaIdentifier returns the registry id of a schema under subject,
// registering it when needed.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject string, avroSchemaText string) (int, error)
}

type SchemaRegistryClient interface {
	CreateSchema(ctx context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error)
}

// Registry registers Avro schemas in the schema registry.
type Registry struct {
	cl SchemaRegistryClient
}

func NewRegistry(cl SchemaRegistryClient) Registry {
	return Registry{cl}
}

func (r Registry) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (int, error) {
	const op = "Registry.DetermineID"

	ss, err := r.cl.CreateSchema(ctx, subject, sr.Schema{
		Schema: avroSchemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ss.ID, nil
}
