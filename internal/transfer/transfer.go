// Package transfer converts capsules to and from the portable document
// format used to move them between libraries.
package transfer

import (
	"encoding/json"
	"strings"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/library"
)

// Schema tags every portable document.
const Schema = "pocket-classroom/v1"

// Document is a capsule tagged with the portable schema.
type Document struct {
	Schema string `json:"schema"`
	capsule.Capsule
}

// ExportDocument returns the portable form of c.
func ExportDocument(c *capsule.Capsule) Document {
	out := c.Clone()
	out.EnsureSlices()
	return Document{Schema: Schema, Capsule: *out}
}

// Marshal encodes d as indented JSON with a trailing newline.
func Marshal(d Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return append(data, '\n'), nil
}

// Saver persists a capsule and returns its id.
type Saver interface {
	Save(c *capsule.Capsule) (string, error)
}

var _ Saver = (*library.Repository)(nil)

// ImportDocument parses raw as a portable document and saves it as a new
// capsule. The embedded id is always discarded, so importing never
// overwrites an existing capsule.
func ImportDocument(repo Saver, raw string) (*capsule.Capsule, error) {
	doc, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	c := doc.Capsule.Clone()
	c.ID = ""
	if _, err := repo.Save(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode parses and checks a portable document without saving it.
// Input that is not JSON is INVALID_JSON; JSON without the schema tag,
// including non-objects, is SCHEMA_MISMATCH. The updatedAt field is
// ignored since saving refreshes it.
func Decode(raw string) (*Document, error) {
	data := []byte(strings.TrimSpace(raw))
	if !json.Valid(data) {
		return nil, errors.NewInvalidJSON(nil)
	}

	// Tag is checked before the body is decoded.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.NewSchemaMismatch(Schema, "")
	}
	var schema string
	if tag, ok := fields["schema"]; ok {
		if err := json.Unmarshal(tag, &schema); err != nil {
			return nil, errors.NewSchemaMismatch(Schema, string(tag))
		}
	}
	if schema != Schema {
		return nil, errors.NewSchemaMismatch(Schema, schema)
	}

	delete(fields, "updatedAt")
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.NewInvalidJSON(err)
	}
	return &doc, nil
}
