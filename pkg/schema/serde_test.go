package schema_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/ecom-admin/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/sr"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeAdminActivityV1(t *testing.T) {

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeAdminActivityV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeAdminActivityV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("IdentifierAndSubjectOpts", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := "testTopic-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.AdminActivitySchemaTextV1,
		).Return(schemaID, nil)

		_, err := schema.NewSerdeAdminActivityV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)
	})


	t.Run("IdentifierError", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaIdentifier.On(
			"DetermineID", t.Context(), "topic-value", schema.AdminActivitySchemaTextV1,
		).Return(0, errors.New("registry unavailable"))

		_, err := schema.NewSerdeAdminActivityV1(
			t.Context(),
			schema.SubjectOpt("topic-value"),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.Error(t, err)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 7
		subject := "admin-activity-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.AdminActivitySchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeAdminActivityV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		in := schema.AdminActivityV1{
			EventID:    "0d7c2f51-6f7e-4f1e-9b0e-1e2f3a4b5c6d",
			Resource:   "product",
			Action:     "create",
			EntityID:   "p1",
			Admin:      "root",
			OccurredAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		}

		data, err := serde.Encode(in)
		require.NoError(t, err)

		var h sr.ConfluentHeader
		id, _, err := h.DecodeID(data)
		require.NoError(t, err)
		assert.Equal(t, schemaID, id)

		var out schema.AdminActivityV1
		require.NoError(t, serde.Decode(data, &out))
		assert.Equal(t, in.EventID, out.EventID)
		assert.Equal(t, in.Resource, out.Resource)
		assert.Equal(t, in.Action, out.Action)
		assert.Equal(t, in.EntityID, out.EntityID)
		assert.Equal(t, in.Admin, out.Admin)
		assert.True(t, in.OccurredAt.Equal(out.OccurredAt))
	})

	t.Run("DecodeUnknownID", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaIdentifier.On(
			"DetermineID", t.Context(), "s", schema.AdminActivitySchemaTextV1,
		).Return(1, nil)

		serde, err := schema.NewSerdeAdminActivityV1(
			t.Context(),
			schema.SubjectOpt("s"),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		var out schema.AdminActivityV1
		err = serde.Decode([]byte{0, 0, 0, 0, 9, 2, 'x'}, &out)
		assert.Error(t, err)
	})
}

type fakeRegistryClient struct {
	subject string
	schema  sr.Schema
}

func (c *fakeRegistryClient) CreateSchema(
	_ context.Context, subject string, s sr.Schema,
) (sr.SubjectSchema, error) {
	c.subject, c.schema = subject, s
	return sr.SubjectSchema{Subject: subject, ID: 42, Schema: s}, nil
}

func TestRegistry(t *testing.T) {
	cl := new(fakeRegistryClient)
	id, err := schema.NewRegistry(cl).DetermineID(
		t.Context(), "admin-activity-value", schema.AdminActivitySchemaTextV1,
	)
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	assert.Equal(t, "admin-activity-value", cl.subject)
	assert.Equal(t, sr.TypeAvro, cl.schema.Type)
}
