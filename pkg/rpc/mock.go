package rpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// MockServer is an in-process JSON-RPC server returning canned results per method.
type MockServer struct {
	server *httptest.Server

	mu      sync.RWMutex
	results map[string]any
	errors  map[string]*Error
}

// NewMockServer creates a started MockServer. It is shut down automatically
// when the test finishes.
func NewMockServer(t *testing.T, results map[string]any, errors map[string]*Error) *MockServer {
	t.Helper()
	if results == nil {
		results = make(map[string]any)
	}
	if errors == nil {
		errors = make(map[string]*Error)
	}
	mock := &MockServer{results: results, errors: errors}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handler))
	t.Cleanup(mock.server.Close)
	return mock
}

// NewMockClient creates a MockServer and a Client pointed at it.
func NewMockClient(t *testing.T, results map[string]any, errors map[string]*Error) (*MockServer, *Client) {
	t.Helper()
	mock := NewMockServer(t, results, errors)
	return mock, NewRPCClient(mock.URL(), time.Second)
}

func (s *MockServer) URL() string {
	return s.server.URL
}

// SetResult sets the canned result for a method, clearing any canned error.
func (s *MockServer) SetResult(method string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[method] = result
	delete(s.errors, method)
}

// SetError sets the canned error for a method.
func (s *MockServer) SetError(method string, err *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[method] = err
}

func (s *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	var request rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	rpcErr, hasErr := s.errors[request.Method]
	result, hasResult := s.results[request.Method]
	s.mu.RUnlock()

	body := map[string]any{"jsonrpc": "2.0", "id": request.ID}
	switch {
	case hasErr:
		body["error"] = rpcErr
	case hasResult:
		body["result"] = result
	default:
		body["error"] = &Error{Code: -32601, Message: "Method not found"}
	}

	w.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
