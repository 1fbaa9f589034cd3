package handlers

import (
	"errors"
	"io"
	"net/http"

	"titlechain/pkg/common"
	pkgerrors "titlechain/pkg/errors"
)

// maxBodyBytes bounds request bodies. Drop payloads carry one act record.
const maxBodyBytes = 1 << 20

// decode reads a JSON body into v. Malformed bodies become validation errors
// so they map to 400.
func decode(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := common.ParseJSONBody(r, v, maxBodyBytes); err != nil && !errors.Is(err, io.EOF) {
		return pkgerrors.NewValidationError("invalid request body: " + err.Error()).WithCause(err)
	}
	return nil
}

// point is a screen or canvas coordinate in a request body
type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
