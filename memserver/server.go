// Package memserver implements a toy line-delimited JSON key-value
// protocol: one request object per line, one response object per line.
//
//	{"action":"set","key":"k","value":...} -> {"status":"ok"}
//	{"action":"get","key":"k"}             -> {"value":...}
//	{"action":"clear"}                     -> {"status":"cleared"}
//
// Malformed input and unknown actions produce {"error":"..."} responses;
// the loop never aborts on a bad request.
package memserver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Backend is the storage behind the server.
type Backend interface {
	Set(key string, value json.RawMessage) error
	Get(key string) (json.RawMessage, bool, error)
	Clear() error
}

type request struct {
	Action string          `json:"action"`
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"value"`
}

// Server serves the line protocol over any reader/writer pair.
type Server struct {
	backend Backend
	log     zerolog.Logger
}

func New(backend Backend, log zerolog.Logger) *Server {
	return &Server{
		backend: backend,
		log:     log.With().Str("component", "memserver").Logger(),
	}
}

// Serve processes requests from r until EOF, writing one response line
// per request to w.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.handle(line)
		if _, err := fmt.Fprintf(w, "%s\n", resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handle(line []byte) []byte {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return errResponse(err)
	}

	switch req.Action {
	case "set":
		if err := s.backend.Set(req.Key, req.Value); err != nil {
			return errResponse(err)
		}
		return []byte(`{"status":"ok"}`)

	case "get":
		value, ok, err := s.backend.Get(req.Key)
		if err != nil {
			return errResponse(err)
		}
		if !ok {
			return []byte(`{"value":null}`)
		}
		resp, err := json.Marshal(map[string]json.RawMessage{"value": value})
		if err != nil {
			return errResponse(err)
		}
		return resp

	case "clear":
		if err := s.backend.Clear(); err != nil {
			return errResponse(err)
		}
		return []byte(`{"status":"cleared"}`)

	default:
		s.log.Warn().Str("action", req.Action).Msg("unknown action")
		return []byte(`{"error":"unknown action"}`)
	}
}

func errResponse(err error) []byte {
	resp, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return resp
}

// MemoryBackend is a map-backed Backend.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]json.RawMessage)}
}

func (b *MemoryBackend) Set(key string, value json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	return nil
}

func (b *MemoryBackend) Get(key string) (json.RawMessage, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.values[key]
	return value, ok, nil
}

func (b *MemoryBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = make(map[string]json.RawMessage)
	return nil
}
