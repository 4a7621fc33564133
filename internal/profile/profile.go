// Package profile decodes business profile and attribute documents, checking
// them against embedded JSON schemas before they reach the engine.
package profile

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"

	"github.com/sells-group/site-engine/internal/model"
)

var (
	//go:embed profile.schema.json
	profileSchemaJSON []byte
	//go:embed attributes.schema.json
	attributesSchemaJSON []byte
)

// ErrInvalidDocument marks input that failed schema validation.
var ErrInvalidDocument = eris.New("profile: document failed schema validation")

var (
	profileSchema    = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compile(profileSchemaJSON) })
	attributesSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compile(attributesSchemaJSON) })
)

func compile(raw []byte) (*gojsonschema.Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, eris.Wrap(err, "profile: compile schema")
	}
	return s, nil
}

// Decode validates and decodes a single profile document.
func Decode(data []byte) (model.BusinessProfile, error) {
	var p model.BusinessProfile
	if err := decode(profileSchema, data, &p); err != nil {
		return model.BusinessProfile{}, err
	}
	return p, nil
}

// DecodeAttributes validates and decodes a business attributes document.
func DecodeAttributes(data []byte) (model.BusinessAttributes, error) {
	var a model.BusinessAttributes
	if err := decode(attributesSchema, data, &a); err != nil {
		return model.BusinessAttributes{}, err
	}
	return a, nil
}

// Validate checks data against the profile schema without decoding it.
func Validate(data []byte) error {
	return validate(profileSchema, data)
}

func decode(schema func() (*gojsonschema.Schema, error), data []byte, dst any) error {
	if err := validate(schema, data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return eris.Wrap(err, "profile: decode")
	}
	return nil
}

func validate(schema func() (*gojsonschema.Schema, error), data []byte) error {
	s, err := schema()
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		// Not parseable as JSON at all.
		return eris.Wrapf(ErrInvalidDocument, "malformed JSON: %v", err)
	}
	if !result.Valid() {
		problems := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			problems[i] = desc.String()
		}
		return eris.Wrap(ErrInvalidDocument, strings.Join(problems, "; "))
	}
	return nil
}
