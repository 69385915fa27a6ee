package app

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"

	"github.com/kumohq/kumo/httperror"
)

// BindJSON decodes the request body as JSON into v, claiming the body.
// By default the decoder rejects unknown fields that do not map to exported
// struct fields. Pass false to allow unknown fields.
// Exactly one JSON value must be present in the body; trailing data is an
// error. Decode failures carry a 400 status, except bodies over a configured
// size limit, which carry 413.
func (c *Context) BindJSON(v any, allowUnknownFields ...bool) error {
	body, err := c.Body()
	if err != nil {
		return err
	}
	defer body.Close()

	dec := json.NewDecoder(body)

	if len(allowUnknownFields) == 0 || !allowUnknownFields[0] {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return httperror.Wrap(decodeStatus(err), err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return httperror.BadRequest("unexpected trailing data after JSON value")
	}

	return nil
}

// BindXML decodes the request body as XML into v, claiming the body.
// Exactly one XML element must be present in the body; trailing data is an
// error. Decode failures carry a 400 status, except bodies over a configured
// size limit, which carry 413.
func (c *Context) BindXML(v any) error {
	body, err := c.Body()
	if err != nil {
		return err
	}
	defer body.Close()

	dec := xml.NewDecoder(body)

	if err := dec.Decode(v); err != nil {
		return httperror.Wrap(decodeStatus(err), err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return httperror.BadRequest("unexpected trailing data after XML value")
	}

	return nil
}

// decodeStatus maps a body decode failure to its response status. Reads cut
// off by http.MaxBytesReader surface as 413 rather than 400.
func decodeStatus(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
