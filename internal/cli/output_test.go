package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// ============================================================================
// Mock Types for Testing
// ============================================================================

type mockDataWithID struct {
	ID   types.ID
	Name string
}

func (m mockDataWithID) GetID() types.ID {
	return m.ID
}

type mockDataWithoutID struct {
	Name  string
	Value int
}

// captureStream swaps *stream for a pipe while fn runs and returns what was
// written to it.
func captureStream(t *testing.T, stream **os.File, fn func()) string {
	t.Helper()

	old := *stream
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	*stream = w

	fn()

	_ = w.Close()
	*stream = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

// ============================================================================
// Success Method Tests
// ============================================================================

func TestOutputFormatter_Success_JSON(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}

	output := captureStream(t, &os.Stdout, func() {
		if err := formatter.Success(map[string]interface{}{"test": "value"}); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, output)
	}
	if result["success"] != true {
		t.Error("Expected success to be true")
	}
	data := result["data"].(map[string]interface{})
	if data["test"] != "value" {
		t.Errorf("Expected data.test to be 'value', got %v", data["test"])
	}
}

func TestOutputFormatter_Success_Quiet_WithID(t *testing.T) {
	id := types.NewID()
	formatter := &OutputFormatter{Quiet: true}

	output := captureStream(t, &os.Stdout, func() {
		if err := formatter.Success(mockDataWithID{ID: id, Name: "Test"}); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	if strings.TrimSpace(output) != string(id) {
		t.Errorf("Expected output '%s', got '%s'", id, output)
	}
}

func TestOutputFormatter_Success_Quiet_WithoutID(t *testing.T) {
	formatter := &OutputFormatter{Quiet: true}

	output := captureStream(t, &os.Stdout, func() {
		_ = formatter.Success(mockDataWithoutID{Name: "Test", Value: 42})
	})

	// Falls through to pretty print when there is no GetID method
	if !strings.Contains(output, "Test") {
		t.Errorf("Expected output to contain 'Test', got '%s'", output)
	}
}

func TestOutputFormatter_Success_HumanReadable(t *testing.T) {
	formatter := &OutputFormatter{}

	output := captureStream(t, &os.Stdout, func() {
		_ = formatter.Success([]string{"item1", "item2"})
	})

	if !strings.Contains(output, "item1") {
		t.Errorf("Expected output to contain 'item1', got '%s'", output)
	}
}

// ============================================================================
// Error Method Tests
// ============================================================================

func TestOutputFormatter_ErrorWithSuggestion_JSON(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}

	output := captureStream(t, &os.Stdout, func() {
		if err := formatter.ErrorWithSuggestion("CARD_NOT_FOUND", "card missing", "list cards first"); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	var result struct {
		Success bool `json:"success"`
		Error   struct {
			Code       string `json:"code"`
			Message    string `json:"message"`
			Suggestion string `json:"suggestion"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, output)
	}
	if result.Success {
		t.Error("Expected success to be false")
	}
	if result.Error.Code != "CARD_NOT_FOUND" || result.Error.Message != "card missing" || result.Error.Suggestion != "list cards first" {
		t.Errorf("Unexpected error payload: %+v", result.Error)
	}
}

func TestOutputFormatter_Error_JSONOmitsEmptySuggestion(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}

	output := captureStream(t, &os.Stdout, func() {
		_ = formatter.Error("X", "y")
	})

	if strings.Contains(output, "suggestion") {
		t.Errorf("Expected no suggestion key, got %s", output)
	}
}

func TestOutputFormatter_Error_HumanReadableGoesToStderr(t *testing.T) {
	formatter := &OutputFormatter{}

	var stdout string
	stderr := captureStream(t, &os.Stderr, func() {
		stdout = captureStream(t, &os.Stdout, func() {
			_ = formatter.ErrorWithSuggestion("X", "something broke", "try again")
		})
	})

	if stdout != "" {
		t.Errorf("Expected nothing on stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "something broke") || !strings.Contains(stderr, "try again") {
		t.Errorf("Expected message and suggestion on stderr, got %q", stderr)
	}
}

// ============================================================================
// Fail Tests
// ============================================================================

func TestOutputFormatter_FailMapsExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("card: %w", models.ErrNotFound), ExitNotFound},
		{"forbidden", &events.Error{Code: events.CodeForbidden, Message: "access denied"}, ExitForbidden},
		{"invalid", models.ErrInvalidArgument, ExitValidation},
		{"conflict", &events.Error{Code: events.CodeConflict, Message: "retry"}, ExitConflict},
		{"other", errors.New("boom"), ExitError},
	}

	formatter := &OutputFormatter{JSON: true}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			captureStream(t, &os.Stdout, func() {
				err = formatter.Fail("CODE", tt.err)
			})
			if got := ExitCodeFor(err); got != tt.want {
				t.Errorf("Expected exit code %d, got %d", tt.want, got)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected wrapped error to match %v", tt.err)
			}
		})
	}
}

func TestOutputFormatter_FailShowsWireMessage(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}

	output := captureStream(t, &os.Stdout, func() {
		_ = formatter.Fail("MOVE_FAILED", &events.Error{Code: events.CodeForbidden, Message: "access denied"})
	})

	if !strings.Contains(output, `"message":"access denied"`) {
		t.Errorf("Expected bare wire message, got %s", output)
	}
}

func TestExitCodeFor_Nil(t *testing.T) {
	if got := ExitCodeFor(nil); got != ExitSuccess {
		t.Errorf("Expected %d, got %d", ExitSuccess, got)
	}
}
