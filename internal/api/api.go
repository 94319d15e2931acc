// Package api declares the wire types and error codes of the HTTP
// surface. Handlers in masond and the clients in masonctl share these
// shapes; nothing here carries behavior beyond JSON marshalling.
package api

import (
	"encoding/json"
	"time"

	"mason.gg/internal/blueprint"
	"mason.gg/internal/ops"
)

// Version is the HTTP surface version, mounted as the /v1 path prefix.
const Version = "1"

// TemplateOptions mirrors the template knobs over JSON. Zero fields
// fall back to the template's own defaults.
type TemplateOptions struct {
	Width       int    `json:"width,omitempty"`
	Depth       int    `json:"depth,omitempty"`
	Height      int    `json:"height,omitempty"`
	Wood        string `json:"wood,omitempty"`
	Roof        string `json:"roof,omitempty"`
	SkipGarden  bool   `json:"skip_garden,omitempty"`
	SkipChimney bool   `json:"skip_chimney,omitempty"`
}

// BuildRequest is the body of POST /v1/build. Exactly one blueprint
// source should be set; when several are, the service prefers inline
// blueprint, then template, then voxel, then description.
type BuildRequest struct {
	Description string           `json:"description,omitempty"`
	Template    string           `json:"template,omitempty"`
	Voxel       string           `json:"voxel,omitempty"`
	Blueprint   json.RawMessage  `json:"blueprint,omitempty"`
	Position    *blueprint.Vec3i `json:"position,omitempty"`
	Rotation    int              `json:"rotation,omitempty"`
	Options     *TemplateOptions `json:"options,omitempty"`
	DryRun      bool             `json:"dry_run,omitempty"`
}

// BuildAccepted is the immediate answer to POST /v1/build; the build
// itself runs on the executor queue. Progress arrives on /v1/watch and
// the final record on /v1/builds/{id}.
type BuildAccepted struct {
	BuildID string          `json:"build_id"`
	Status  string          `json:"status"`
	Origin  blueprint.Vec3i `json:"origin"`
	Ops     int             `json:"ops"`
}

// CompileRequest is the body of POST /v1/compile and POST /v1/validate
// when validating a blueprint instead of raw commands.
type CompileRequest struct {
	Template         string           `json:"template,omitempty"`
	Voxel            string           `json:"voxel,omitempty"`
	Blueprint        json.RawMessage  `json:"blueprint,omitempty"`
	Position         *blueprint.Vec3i `json:"position,omitempty"`
	Rotation         int              `json:"rotation,omitempty"`
	Options          *TemplateOptions `json:"options,omitempty"`
	IncludeUnordered bool             `json:"include_unordered,omitempty"`
}

type CompileResponse struct {
	Operations    []string        `json:"operations"`
	Count         int             `json:"count"`
	Blocks        int64           `json:"blocks"`
	Violations    []ops.Violation `json:"violations,omitempty"`
	PaletteDigest string          `json:"palette_digest"`
}

// ValidateRequest carries rendered commands for POST /v1/validate.
type ValidateRequest struct {
	Commands []string `json:"commands"`
}

type ValidateResponse struct {
	Checked    int             `json:"checked"`
	Violations []ops.Violation `json:"violations,omitempty"`
}

// TemplateInfo describes one parametric template in GET /v1/templates.
type TemplateInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Defaults    TemplateOptions `json:"defaults"`
}

// VoxelInfo describes one fixed voxel blueprint.
type VoxelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Depth       int    `json:"depth"`
}

type TemplatesResponse struct {
	Templates     []TemplateInfo `json:"templates"`
	Voxels        []VoxelInfo    `json:"voxels"`
	PaletteDigest string         `json:"palette_digest"`
}

// BuildRecord is one history row over the wire.
type BuildRecord struct {
	ID          string           `json:"id"`
	RequestedAt time.Time        `json:"requested_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Source      string           `json:"source"`
	Description string           `json:"description,omitempty"`
	Template    string           `json:"template,omitempty"`
	Origin      *blueprint.Vec3i `json:"origin,omitempty"`
	Ops         int              `json:"ops"`
	Blocks      int64            `json:"blocks"`
	Status      string           `json:"status"`
	Error       string           `json:"error,omitempty"`
}

type BuildsResponse struct {
	Builds []BuildRecord `json:"builds"`
}

// BuildDetail adds the recorded command list to a history row.
type BuildDetail struct {
	BuildRecord
	Operations []string `json:"operations,omitempty"`
}

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewError builds the envelope for a code/message pair.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}
