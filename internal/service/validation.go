package service

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docrepo/internal/model"
)

const (
	maxTitleLength  = 256
	maxAuthorLength = 128
	maxTagLength    = 64
	maxQueryLength  = 256
)

// CreateDocumentRequest is the input of DocumentService.Create.
type CreateDocumentRequest struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// notBlank rejects strings made only of whitespace. Nil pointers and empty
// strings are left to Required / NilOrNotEmpty.
var notBlank = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	if s, ok := v.(string); ok && s != "" && strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
})

var tagRules = validation.Each(
	validation.Required,
	validation.Length(1, maxTagLength),
	notBlank,
)

// Validate checks the request; content may be empty.
func (r CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, maxTitleLength), notBlank),
		validation.Field(&r.Author, validation.Required, validation.Length(1, maxAuthorLength), notBlank),
		validation.Field(&r.Tags, tagRules),
	)
}

func validateUpdate(upd model.DocumentUpdate) error {
	return validation.ValidateStruct(&upd,
		validation.Field(&upd.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLength), notBlank),
		validation.Field(&upd.Tags, tagRules),
	)
}

func validateQuery(query string) error {
	return validation.Errors{
		"query": validation.Validate(query, validation.Required, validation.Length(1, maxQueryLength), notBlank),
	}.Filter()
}
