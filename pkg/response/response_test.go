package response

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSuccess_JSONFormat(t *testing.T) {
	resp := Success(map[string]string{"id": "123"})

	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if parsed["success"] != true {
		t.Errorf("Expected success=true, got %v", parsed["success"])
	}
	if _, ok := parsed["error"]; ok {
		t.Error("Expected error field to be omitted")
	}
	if _, ok := parsed["meta"]; ok {
		t.Error("Expected meta field to be omitted")
	}
}

func TestError(t *testing.T) {
	resp := Error(ErrCodeNotFound, "Participant not found")

	if resp.Success {
		t.Error("Expected success to be false")
	}
	if resp.Error == nil {
		t.Fatal("Expected error to be set")
	}
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected code %s, got %s", ErrCodeNotFound, resp.Error.Code)
	}
}

func TestDefaultMessages(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		code string
		msg  string
	}{
		{"unauthorized", Unauthorized(""), ErrCodeUnauthorized, "Authentication required"},
		{"forbidden", Forbidden(""), ErrCodeForbidden, "Access denied"},
		{"not found", NotFound(""), ErrCodeNotFound, "Resource not found"},
		{"internal", InternalError(""), ErrCodeInternalError, "An internal error occurred"},
		{"rate limit", TooManyRequests(""), ErrCodeTooManyRequests, "Too many requests, please try again later"},
		{"conflict default code", Conflict("", "taken"), ErrCodeConflict, "taken"},
		{"conflict custom code", Conflict(ErrCodeInvalidStatusTransition, "nope"), ErrCodeInvalidStatusTransition, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.resp.Error.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, tt.resp.Error.Code)
			}
			if tt.resp.Error.Message != tt.msg {
				t.Errorf("Expected message %q, got %q", tt.msg, tt.resp.Error.Message)
			}
		})
	}
}

func TestValidationFailed(t *testing.T) {
	resp := ValidationFailed(map[string]string{"first_name": "required"})

	if resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("Expected code %s, got %s", ErrCodeValidationFailed, resp.Error.Code)
	}
	if resp.Error.Details["first_name"] != "required" {
		t.Errorf("Expected details to be carried, got %v", resp.Error.Details)
	}
}

func TestPaginated(t *testing.T) {
	tests := []struct {
		name      string
		perPage   int
		total     int64
		wantPages int
	}{
		{"exact", 10, 100, 10},
		{"remainder", 10, 101, 11},
		{"empty", 10, 0, 0},
		{"zero per page", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Paginated([]int{}, 1, tt.perPage, tt.total)
			if resp.Meta.TotalPages != tt.wantPages {
				t.Errorf("Expected %d pages, got %d", tt.wantPages, resp.Meta.TotalPages)
			}
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeInvalidStatusTransition, http.StatusConflict},
		{ErrCodeRegistrationClosed, http.StatusGone},
		{ErrCodeNothingToInvoice, http.StatusUnprocessableEntity},
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{"UNKNOWN", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetHTTPStatus(tt.code); got != tt.want {
				t.Errorf("GetHTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
