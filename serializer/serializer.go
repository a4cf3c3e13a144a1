// Package serializer converts entities to and from their JSON wire form.
//
// ModelSerializer is a passthrough: every exported JSON field of the entity
// is emitted unchanged, and incoming payloads are decoded onto the same
// struct after dropping the fields the database owns.
package serializer

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/kbukum/backend-template/database"
	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/validation"
)

// ReadOnlyFields are ignored by Deserialize.
var ReadOnlyFields = []string{"id", "createdAt", "updatedAt"}

// ModelSerializer serializes T with all of its fields.
type ModelSerializer[T database.Entity] struct {
	readOnly map[string]struct{}
}

// New returns a serializer for T. extraReadOnly adds JSON field names that
// Deserialize ignores on top of ReadOnlyFields.
func New[T database.Entity](extraReadOnly ...string) *ModelSerializer[T] {
	ro := make(map[string]struct{}, len(ReadOnlyFields)+len(extraReadOnly))
	for _, f := range ReadOnlyFields {
		ro[f] = struct{}{}
	}
	for _, f := range extraReadOnly {
		ro[f] = struct{}{}
	}
	return &ModelSerializer[T]{readOnly: ro}
}

// Serialize returns the JSON fields of entity as a map.
func (s *ModelSerializer[T]) Serialize(entity T) (map[string]any, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	out := map[string]any{}
	if err := dec.Decode(&out); err != nil {
		return nil, apperrors.Internal(err)
	}
	return out, nil
}

// SerializeMany serializes each entity in order. An empty input gives an
// empty, non-nil slice.
func (s *ModelSerializer[T]) SerializeMany(entities []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		m, err := s.Serialize(e)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Deserialize decodes data into a new T, skipping read-only fields, and
// validates the result.
func (s *ModelSerializer[T]) Deserialize(data []byte) (T, error) {
	var zero T

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return zero, apperrors.Validation("JSON parse error.").WithCause(err)
	}
	for f := range s.readOnly {
		delete(fields, f)
	}
	clean, err := json.Marshal(fields)
	if err != nil {
		return zero, apperrors.Internal(err)
	}

	entity := newEntity[T]()
	if err := json.Unmarshal(clean, entity); err != nil {
		return zero, apperrors.Validation("Invalid field type.").WithCause(err)
	}
	if err := validation.Validate(structOf(entity)); err != nil {
		return zero, err
	}
	return *entity, nil
}

// newEntity allocates a T; when T is itself a pointer type the pointee is
// allocated too so decoding has somewhere to write.
func newEntity[T any]() *T {
	entity := new(T)
	if t := reflect.TypeOf(entity).Elem(); t.Kind() == reflect.Pointer {
		reflect.ValueOf(entity).Elem().Set(reflect.New(t.Elem()))
	}
	return entity
}

// structOf returns a pointer to the underlying struct of entity.
func structOf[T any](entity *T) any {
	if v := reflect.ValueOf(entity).Elem(); v.Kind() == reflect.Pointer {
		return v.Interface()
	}
	return entity
}
