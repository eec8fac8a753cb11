package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ListMeta describes pagination metadata for list envelopes.
type ListMeta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ListEnvelope is the JSON body for collection responses.
type ListEnvelope struct {
	Data any      `json:"data"`
	Meta ListMeta `json:"meta"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// List sends a paginated collection response.
func List(w http.ResponseWriter, data any, meta ListMeta) {
	JSON(w, http.StatusOK, ListEnvelope{Data: data, Meta: meta})
}

// DecodeJSON decodes a JSON request body into the target struct. Malformed
// payloads surface as validation errors.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: malformed json body", ErrValidation)
	}
	return nil
}
