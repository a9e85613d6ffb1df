package registry

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/zx06/minke/internal/errors"
)

func intPtr(n int) *int { return &n }

func nonEmptyString() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", MinLength: intPtr(1)}
}

// importItemSchema describes one record of an import file. Unknown fields are
// allowed and ignored.
var importItemSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"ip", "user", "password", "tags"},
	Properties: map[string]*jsonschema.Schema{
		"ip":       nonEmptyString(),
		"user":     nonEmptyString(),
		"password": nonEmptyString(),
		"note":     {Types: []string{"null", "string"}},
		"tags": {
			Type:  "array",
			Items: &jsonschema.Schema{Type: "string"},
		},
	},
}

var importSchema = &jsonschema.Schema{
	Type:  "array",
	Items: importItemSchema,
}

var resolvedImportSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	return importSchema.Resolve(nil)
})

// DecodeImport validates an import document and returns its records. Any
// malformed record rejects the whole document. Error details name the
// record index and field, never the values.
func DecodeImport(data []byte) ([]Server, *errors.XError) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.New(errors.CodeImportInvalid, "invalid file format: not valid JSON", nil)
	}
	rs, err := resolvedImportSchema()
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "failed to build import schema", nil, err)
	}
	if err := rs.Validate(doc); err != nil {
		return nil, errors.New(errors.CodeImportInvalid, "invalid file format", describeInvalid(doc))
	}
	var servers []Server
	if err := json.Unmarshal(data, &servers); err != nil {
		return nil, errors.New(errors.CodeImportInvalid, "invalid file format", nil)
	}
	for i := range servers {
		servers[i] = servers[i].normalized()
	}
	return servers, nil
}

// describeInvalid locates the first offending record so the caller can point
// the user at it.
func describeInvalid(doc any) map[string]any {
	items, ok := doc.([]any)
	if !ok {
		return map[string]any{"reason": "expected a JSON array of servers"}
	}
	for i, item := range items {
		if field := invalidField(item); field != "" {
			return map[string]any{"index": i, "field": field}
		}
	}
	return nil
}

func invalidField(item any) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return "(record)"
	}
	for _, f := range []string{"ip", "user", "password"} {
		if s, ok := obj[f].(string); !ok || s == "" {
			return f
		}
	}
	tags, ok := obj["tags"].([]any)
	if !ok {
		return "tags"
	}
	for _, t := range tags {
		if _, ok := t.(string); !ok {
			return "tags"
		}
	}
	if n, ok := obj["note"]; ok && n != nil {
		if _, ok := n.(string); !ok {
			return "note"
		}
	}
	return ""
}

// encodeSnapshot is the compact form stored in the secret store.
func encodeSnapshot(servers []Server) (string, error) {
	if servers == nil {
		servers = []Server{}
	}
	b, err := json.Marshal(servers)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeSnapshot(raw string) ([]Server, error) {
	var servers []Server
	if err := json.Unmarshal([]byte(raw), &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// WriteExport writes servers as a JSON array indented with two spaces.
func WriteExport(w io.Writer, servers []Server) error {
	if servers == nil {
		servers = []Server{}
	}
	b, err := json.MarshalIndent(servers, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
