package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestServerError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ServerError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryInvalidArgument, SeverityError, "configuration required"),
			expected: "invalid_argument (error): configuration required",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("socket closed"), CategoryEngine, SeverityError, "engine call failed"),
			expected: "engine (error): engine call failed: socket closed",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestServerError_WithContext(t *testing.T) {
	err := NotRunning("get_port").WithContext("state", "created")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["operation"] != "get_port" {
		t.Errorf("Context[operation] = %v, want get_port", err.Context["operation"])
	}
	if err.Context["state"] != "created" {
		t.Errorf("Context[state] = %v, want created", err.Context["state"])
	}
}

func TestServerError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := EngineFailure("inject_pointer", cause)

	if !stdErrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCategoryPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"invalid argument", InvalidArgument("bad port"), IsInvalidArgument, true},
		{"already running", AlreadyRunning("start"), IsAlreadyRunning, true},
		{"not running", NotRunning("stats"), IsNotRunning, true},
		{"unsupported", Unsupported("clipboard"), IsUnsupported, true},
		{"wrapped once", fmt.Errorf("outer: %w", NotRunning("stats")), IsNotRunning, true},
		{"plain error", stdErrors.New("plain"), IsNotRunning, false},
		{"nil error", nil, IsAlreadyRunning, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.pred(test.err); got != test.want {
				t.Errorf("predicate = %v, want %v", got, test.want)
			}
		})
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(Unsupported("remote_control")); got != CategoryUnsupported {
		t.Errorf("GetCategory = %v, want %v", got, CategoryUnsupported)
	}
	if got := GetCategory(stdErrors.New("plain")); got != CategoryInternal {
		t.Errorf("GetCategory for plain error = %v, want %v", got, CategoryInternal)
	}
}
