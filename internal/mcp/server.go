// Package mcp exposes the builder to AI agent frontends as a JSON-RPC
// tool endpoint. One POST route, five tools, optional HMAC auth with a
// replay guard; without a secret only loopback clients are served.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mason.gg/internal/api"
)

const protocolVersion = "2024-11-05"

const maxBodyBytes = 4 << 20

// Builder is the slice of the build service the tools need.
type Builder interface {
	Build(ctx context.Context, req api.BuildRequest) (api.BuildAccepted, error)
	Compile(ctx context.Context, req api.CompileRequest) (api.CompileResponse, error)
	ValidateCommands(cmds []string) api.ValidateResponse
	Templates() api.TemplatesResponse
	BuildDetail(ctx context.Context, id string) (api.BuildDetail, error)
}

type Config struct {
	Builder Builder
	Secret  string
}

type Server struct {
	builder Builder
	secret  []byte
	guard   *replayGuard
	now     func() time.Time
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Builder == nil {
		return nil, fmt.Errorf("nil builder")
	}
	s := &Server{
		builder: cfg.Builder,
		now:     time.Now,
	}
	if sec := strings.TrimSpace(cfg.Secret); sec != "" {
		s.secret = []byte(sec)
		s.guard = newReplayGuard(10 * time.Minute)
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/mcp", s.handleMCP)
	return mux
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func rpcOK(id json.RawMessage, result any) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func rpcErr(id json.RawMessage, code int, msg string, data any) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: msg, Data: data}}
}

func (s *Server) handleMCP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(rw, "bad body", http.StatusBadRequest)
		return
	}
	_ = r.Body.Close()

	if len(s.secret) > 0 {
		vr := verifyHMAC(r, body, s.secret, s.now())
		if vr.HTTPStatus != 0 {
			http.Error(rw, vr.Message, vr.HTTPStatus)
			return
		}
		if !s.guard.allow(vr.AgentID, vr.Signature, s.now()) {
			http.Error(rw, "replayed signature", http.StatusUnauthorized)
			return
		}
	} else if err := requireLoopback(r); err != nil {
		http.Error(rw, err.Error(), http.StatusForbidden)
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Method == "" {
		http.Error(rw, "bad jsonrpc request", http.StatusBadRequest)
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		http.Error(rw, "unsupported jsonrpc version", http.StatusBadRequest)
		return
	}

	resp := s.dispatch(r.Context(), req)
	rw.Header().Set("content-type", "application/json")
	_ = json.NewEncoder(rw).Encode(resp)
}

func (s *Server) dispatch(ctx context.Context, req rpcRequest) rpcResponse {
	switch req.Method {
	case "initialize":
		return rpcOK(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
		})

	case "list_tools":
		return rpcOK(req.ID, map[string]any{"tools": toolDescriptors()})

	case "call_tool":
		var p struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if len(req.Params) == 0 {
			return rpcErr(req.ID, -32602, "missing params", nil)
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return rpcErr(req.ID, -32602, "bad params", err.Error())
		}
		if p.Name == "" {
			return rpcErr(req.ID, -32602, "missing tool name", nil)
		}
		if !isKnownTool(p.Name) {
			return rpcErr(req.ID, -32601, "tool not found", map[string]any{"name": p.Name})
		}
		out, err := s.callTool(ctx, p.Name, p.Arguments)
		if err != nil {
			return rpcErr(req.ID, -32000, api.MessageOf(err), map[string]any{"code": api.CodeOf(err)})
		}
		return rpcOK(req.ID, out)

	default:
		return rpcErr(req.ID, -32601, "method not found", nil)
	}
}

func (s *Server) callTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "mason.build_structure":
		var req api.BuildRequest
		if len(args) > 0 {
			if err := json.Unmarshal(args, &req); err != nil {
				return nil, api.Errorf(api.ErrBadRequest, "bad arguments: %v", err)
			}
		}
		return s.builder.Build(ctx, req)

	case "mason.compile_blueprint":
		var req api.CompileRequest
		if len(args) > 0 {
			if err := json.Unmarshal(args, &req); err != nil {
				return nil, api.Errorf(api.ErrBadRequest, "bad arguments: %v", err)
			}
		}
		return s.builder.Compile(ctx, req)

	case "mason.list_templates":
		return s.builder.Templates(), nil

	case "mason.get_build":
		var p struct {
			ID string `json:"id"`
		}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, api.Errorf(api.ErrBadRequest, "bad arguments: %v", err)
			}
		}
		if p.ID == "" {
			return nil, api.Errorf(api.ErrBadRequest, "missing id")
		}
		return s.builder.BuildDetail(ctx, p.ID)

	case "mason.validate":
		var p struct {
			Commands []string `json:"commands"`
		}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, api.Errorf(api.ErrBadRequest, "bad arguments: %v", err)
			}
		}
		return s.builder.ValidateCommands(p.Commands), nil

	default:
		return nil, api.Errorf(api.ErrBadRequest, "unknown tool: %s", name)
	}
}

func isKnownTool(name string) bool {
	switch name {
	case "mason.build_structure",
		"mason.compile_blueprint",
		"mason.list_templates",
		"mason.get_build",
		"mason.validate":
		return true
	default:
		return false
	}
}

func toolDescriptors() []map[string]any {
	position := map[string]any{
		"type":     "array",
		"items":    map[string]any{"type": "integer"},
		"minItems": 3,
		"maxItems": 3,
	}
	options := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"width":        map[string]any{"type": "integer"},
			"depth":        map[string]any{"type": "integer"},
			"height":       map[string]any{"type": "integer"},
			"wood":         map[string]any{"type": "string"},
			"roof":         map[string]any{"type": "string"},
			"skip_garden":  map[string]any{"type": "boolean"},
			"skip_chimney": map[string]any{"type": "boolean"},
		},
	}
	return []map[string]any{
		{
			"name":        "mason.build_structure",
			"description": "Queue a build: inline blueprint, named template, voxel blueprint, or prose description. Returns the build id; progress streams on /v1/watch.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"description": map[string]any{"type": "string"},
					"template":    map[string]any{"type": "string"},
					"voxel":       map[string]any{"type": "string"},
					"blueprint":   map[string]any{"type": "object"},
					"position":    position,
					"rotation":    map[string]any{"type": "integer"},
					"options":     options,
					"dry_run":     map[string]any{"type": "boolean"},
				},
			},
		},
		{
			"name":        "mason.compile_blueprint",
			"description": "Compile a blueprint to the ordered command list without executing it.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"template":          map[string]any{"type": "string"},
					"voxel":             map[string]any{"type": "string"},
					"blueprint":         map[string]any{"type": "object"},
					"position":          position,
					"rotation":          map[string]any{"type": "integer"},
					"options":           options,
					"include_unordered": map[string]any{"type": "boolean"},
				},
			},
		},
		{
			"name":        "mason.list_templates",
			"description": "List the built-in parametric templates and fixed voxel blueprints.",
			"inputSchema": map[string]any{"type": "object", "properties": map[string]any{}, "additionalProperties": false},
		},
		{
			"name":        "mason.get_build",
			"description": "Fetch one build's history record including its recorded command list.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{"type": "string"},
				},
				"required": []string{"id"},
			},
		},
		{
			"name":        "mason.validate",
			"description": "Check rendered commands against syntax, length and block allow-list rules.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"commands": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"commands"},
			},
		},
	}
}
