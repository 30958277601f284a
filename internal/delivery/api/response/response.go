// Package response renders the JSON envelope shared by every endpoint:
//
//	{"data": ..., "meta": {"request_id": ...}}
//	{"error": {"code", "message", "details"}, "meta": {"request_id": ...}}
package response

import (
	"net/http"

	deliverycontext "gatekeeper/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

type Envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
	Meta  MetaInfo   `json:"meta"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type MetaInfo struct {
	RequestID string `json:"request_id"`
}

// MessageData is the payload of endpoints that only report an outcome.
type MessageData struct {
	Message string `json:"message"`
}

func Success(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Data: data, Meta: meta(c)})
}

func Message(c echo.Context, status int, message string) error {
	return Success(c, status, MessageData{Message: message})
}

// Error writes an error envelope. Details are dropped for server errors and
// for 401/403 so that nothing internal or auth-related leaks to the client.
func Error(c echo.Context, status int, code, message, details string) error {
	if !exposesDetails(status) {
		details = ""
	}

	return c.JSON(status, Envelope{
		Error: &ErrorInfo{Code: code, Message: message, Details: details},
		Meta:  meta(c),
	})
}

func exposesDetails(status int) bool {
	switch {
	case status >= http.StatusInternalServerError:
		return false
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return false
	default:
		return true
	}
}

func meta(c echo.Context) MetaInfo {
	return MetaInfo{RequestID: deliverycontext.GetRequestID(c)}
}
