package lambda

import "fmt"

// Known Lambda Cloud API error codes. The API discriminates errors by a
// stable code string; everything the service can return today is listed
// here so callers can dispatch exhaustively.
const (
	CodeUnknown               = "global/unknown"
	CodeInvalidAPIKey         = "global/invalid-api-key"
	CodeAccountInactive       = "global/account-inactive"
	CodeInvalidAddress        = "global/invalid-address"
	CodeInvalidParameters     = "global/invalid-parameters"
	CodeObjectDoesNotExist    = "global/object-does-not-exist"
	CodeQuotaExceeded         = "global/quota-exceeded"
	CodeInsufficientCapacity  = "instance-operations/launch/insufficient-capacity"
	CodeFileSystemWrongRegion = "instance-operations/launch/file-system-in-wrong-region"
)

// APIError is a structured error returned by the Lambda Cloud API.
type APIError struct {
	Status     int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("lambda api error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
