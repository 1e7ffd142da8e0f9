package http

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxBodyBytes caps request bodies. Vault entries are small; anything bigger
// than this is not a legitimate request.
const maxBodyBytes = 1 << 20

// decodeJSON parses the request body into dst. Trailing garbage after the
// JSON value is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
