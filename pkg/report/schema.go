package report

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/forensics"
)

type schemaState struct {
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
	err      error
}

// The schema is derived from the document type once and shared by every
// validation.
var documentSchema = sync.OnceValue(func() schemaState {
	s, err := jsonschema.For[forensics.Document](nil)
	if err != nil {
		return schemaState{err: fmt.Errorf("report: derive document schema: %w", err)}
	}
	res, err := s.Resolve(nil)
	if err != nil {
		return schemaState{err: fmt.Errorf("report: resolve document schema: %w", err)}
	}
	return schemaState{schema: s, resolved: res}
})

// DocumentSchema returns the JSON Schema of the canonical verdict
// document.
func DocumentSchema() (*jsonschema.Schema, error) {
	st := documentSchema()
	return st.schema, st.err
}

// ValidateDocument checks that data is a JSON object with the canonical
// document shape. It runs before hashes are compared so a structurally
// damaged file is reported as such instead of as tampering.
func ValidateDocument(data []byte) error {
	st := documentSchema()
	if st.err != nil {
		return st.err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("report: document is not valid JSON: %w", err)
	}
	if err := st.resolved.Validate(v); err != nil {
		return fmt.Errorf("report: document does not match schema: %w", err)
	}
	return nil
}
