package response

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response represents a standard API response format
type Response struct {
	Status     string `json:"status"`      // "success" or "error"
	StatusCode int    `json:"status_code"` // HTTP status code
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data any) Response {
	return Response{
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     StatusError,
		StatusCode: statusCode,
		Error:      err,
	}
}

// Raw is Response as seen by a client, with Data left undecoded.
type Raw struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Parse reads an envelope. ok is false when body is not one.
func Parse(body []byte) (Raw, bool) {
	var r Raw
	if err := json.Unmarshal(body, &r); err != nil || r.Status == "" {
		return Raw{}, false
	}
	return r, true
}
