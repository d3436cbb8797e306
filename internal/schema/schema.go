// Package schema checks company records against the fixed structural
// contract. Validation aggregates errors without raising; a record
// failing never blocks the others from being checked.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
)

//go:embed company.schema.json
var companySchema []byte

// Log truncation bounds for failing batches.
const (
	maxLoggedRecords  = 10
	maxLoggedMessages = 5
)

// RecordErrors summarizes one record's validation failures as
// "field: message" strings, ordered by field path.
type RecordErrors struct {
	Slug   string   `json:"slug"`
	Errors []string `json:"errors"`
}

// Validator holds the compiled company schema.
type Validator struct {
	schema *gojsonschema.Schema
	logger *zap.Logger
}

// NewValidator compiles the embedded schema.
func NewValidator(logger *zap.Logger) (*Validator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(companySchema))
	if err != nil {
		return nil, fmt.Errorf("compile company schema: %w", err)
	}
	return &Validator{schema: schema, logger: logger}, nil
}

// Validate checks every record and returns one summary per failing
// record. An empty result means the whole batch is valid.
func (v *Validator) Validate(companies []*company.Company) ([]RecordErrors, error) {
	var all []RecordErrors
	for _, c := range companies {
		doc, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("marshal record %s: %w", c.Slug, err)
		}
		messages, err := v.ValidateDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("validate record %s: %w", c.Slug, err)
		}
		if len(messages) > 0 {
			all = append(all, RecordErrors{Slug: c.Slug, Errors: messages})
		}
	}
	v.logResult(all, len(companies))
	return all, nil
}

// ValidateDocument checks one JSON document against the schema and
// returns its error messages ordered by field path.
func (v *Validator) ValidateDocument(doc []byte) ([]string, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		messages = append(messages, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	sort.Strings(messages)
	return messages, nil
}

func (v *Validator) logResult(all []RecordErrors, total int) {
	if len(all) == 0 {
		v.logger.Info("schema validation passed", zap.Int("companies", total))
		return
	}
	totalErrs := 0
	for _, e := range all {
		totalErrs += len(e.Errors)
	}
	v.logger.Warn("schema validation failed",
		zap.Int("errors", totalErrs),
		zap.Int("companies", len(all)))
	for i, entry := range all {
		if i >= maxLoggedRecords {
			break
		}
		msgs := entry.Errors
		if len(msgs) > maxLoggedMessages {
			msgs = msgs[:maxLoggedMessages]
		}
		v.logger.Warn("invalid record",
			zap.String("slug", entry.Slug),
			zap.Strings("errors", msgs))
	}
}
