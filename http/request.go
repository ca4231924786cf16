package http

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/boldorider4/kvfront"
	"github.com/go-playground/validator/v10"
)

// createRequest is the POST body of /keys and /files. Name may also be sent
// as keyname or filename depending on the collection.
type createRequest struct {
	Name     string  `json:"name"`
	KeyName  string  `json:"keyname"`
	FileName string  `json:"filename"`
	Content  *string `json:"content"`
}

func (req createRequest) entryName(alias string) string {
	if req.Name != "" {
		return req.Name
	}
	switch alias {
	case "keyname":
		return req.KeyName
	case "filename":
		return req.FileName
	default:
		return ""
	}
}

var errTrailingData = errors.New("unexpected data after JSON value")

// decodeJSON decodes exactly one JSON value from r. Anything but whitespace
// after the value is an error.
func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}

	err := dec.Decode(&struct{}{})
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return errTrailingData
	default:
		return err
	}
}

// entryInput is the validated form of createRequest. Content may be empty
// but must be present.
type entryInput struct {
	Name    string  `validate:"required,entryname"`
	Content *string `validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("entryname", func(fl validator.FieldLevel) bool {
		return kvfront.IsValidName(fl.Field().String())
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "Missing name or content"
		}
	}

	return "Invalid name"
}
