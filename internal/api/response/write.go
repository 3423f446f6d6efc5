package response

import (
	"encoding/json"
	"net/http"
)

const encodeFailure = `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`

// JSON encodes data before touching the response, so an encoding failure
// becomes a clean 500 rather than a truncated body. League data changes
// during an event night, so nothing is cacheable.
func JSON(w http.ResponseWriter, status int, data any) {
	var body []byte
	if data != nil {
		var err error
		if body, err = json.Marshal(data); err != nil {
			status, body = http.StatusInternalServerError, []byte(encodeFailure)
		}
		body = append(body, '\n')
	}
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func NoContent(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}
