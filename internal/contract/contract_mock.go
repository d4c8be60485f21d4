package contract

import "github.com/stretchr/testify/mock"

// MockDiagnostics is a mock implementation of Diagnostics for testing.
type MockDiagnostics struct {
	mock.Mock
}

var _ Diagnostics = &MockDiagnostics{} // Compile-time check

// Warn implements the Diagnostics interface.
func (m *MockDiagnostics) Warn(msg string, err error) {
	m.Called(msg, err)
}

// NewMockDiagnostics returns a mock that accepts any warning.
func NewMockDiagnostics() *MockDiagnostics {
	m := &MockDiagnostics{}
	m.On("Warn", mock.Anything, mock.Anything).Return()
	return m
}

// Errors returns the errors passed to Warn, in call order.
func (m *MockDiagnostics) Errors() []error {
	var errs []error
	for _, call := range m.Calls {
		if call.Method == "Warn" {
			errs = append(errs, call.Arguments.Error(1))
		}
	}
	return errs
}
