package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/JonMunkholm/csvcell/internal/codec"
	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/JonMunkholm/csvcell/internal/directory"
	"github.com/JonMunkholm/csvcell/internal/logging"
	"github.com/JonMunkholm/csvcell/internal/web/templates"
)

// decodeJSON reads the request body into v. Failures wrap core.ErrInvalidRequest.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body exceeds %d bytes", core.ErrInvalidRequest, maxErr.Limit)
		}
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return nil
}

// parseDelimiter converts an optional one-character delimiter. The empty
// string selects the configured default; the enclosure character is refused.
func (s *Server) parseDelimiter(str string) (rune, error) {
	if str == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(str) != 1 {
		return 0, fmt.Errorf("%w: delimiter %q must be a single character", core.ErrInvalidRequest, str)
	}
	r, _ := utf8.DecodeRuneInString(str)
	if err := s.service.CheckDelimiter(r); err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return r, nil
}

// boolOr returns *p, or def when p is nil.
func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// ----------------------------------------------------------------------------
// Health
// ----------------------------------------------------------------------------

// directoryCache is implemented by directories that memoize lookups.
type directoryCache interface {
	Stats() directory.CacheStats
	Invalidate()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":      "ok",
		"entity_type": s.service.EntityType().Code,
		"batches":     s.service.Limiter().Status(),
	}
	if cache, ok := s.service.Directory().(directoryCache); ok {
		resp["directory_cache"] = cache.Stats()
	}
	writeJSON(w, resp)
}

// ----------------------------------------------------------------------------
// Values
// ----------------------------------------------------------------------------

type encodeValuesRequest struct {
	Fields    []string `json:"fields"`
	Delimiter string   `json:"delimiter,omitempty"`
}

type cellResponse struct {
	Text    string `json:"text"`
	Present bool   `json:"present"`
}

// handleEncodeValues joins fields into one cell.
func (s *Server) handleEncodeValues(w http.ResponseWriter, r *http.Request) {
	var req encodeValuesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	delim, err := s.parseDelimiter(req.Delimiter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	text, ok := s.service.EncodeValues(r.Context(), req.Fields, delim)
	writeJSON(w, cellResponse{Text: text, Present: ok})
}

type decodeValuesRequest struct {
	Text      string `json:"text"`
	Delimiter string `json:"delimiter,omitempty"`
}

type decodeValuesResponse struct {
	Fields  []string `json:"fields"`
	Present bool     `json:"present"`
}

// handleDecodeValues splits one cell into fields. HTMX requests get an HTML
// list instead of JSON.
func (s *Server) handleDecodeValues(w http.ResponseWriter, r *http.Request) {
	var req decodeValuesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	delim, err := s.parseDelimiter(req.Delimiter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	fields := s.service.DecodeValues(r.Context(), req.Text, delim)
	if isHTMX(r) {
		s.renderFragment(w, r, templates.FieldList(fields))
		return
	}
	writeJSON(w, decodeValuesResponse{Fields: fields, Present: fields != nil})
}

// ----------------------------------------------------------------------------
// Additional attributes
// ----------------------------------------------------------------------------

type attributeResponse struct {
	Code          string `json:"code"`
	FrontendInput string `json:"frontend_input"`
}

// handleListAttributes lists the attributes of the configured entity type.
func (s *Server) handleListAttributes(w http.ResponseWriter, r *http.Request) {
	descs, err := s.service.ListAttributes(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]attributeResponse, len(descs))
	for i, d := range descs {
		out[i] = attributeResponse{Code: d.Code, FrontendInput: d.FrontendInput.String()}
	}
	writeJSON(w, map[string]any{
		"entity_type": s.service.EntityType().Code,
		"attributes":  out,
		"count":       len(out),
	})
}

// handleInvalidateCache drops cached directory lookups so catalog edits
// become visible without a restart.
func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	cache, ok := s.service.Directory().(directoryCache)
	if !ok {
		s.respondError(w, r, fmt.Errorf("invalidate directory cache: %w", codec.ErrUnsupported))
		return
	}
	cache.Invalidate()
	logging.FromContext(r.Context()).Info("directory cache invalidated")
	w.WriteHeader(http.StatusNoContent)
}

type normalizeAttributesRequest struct {
	Attributes *codec.Attributes `json:"attributes"`
	Pack       *bool             `json:"pack,omitempty"`
}

// handleNormalizeAttributes encodes an attribute object into one cell.
// Values are packed by input type unless pack is false.
func (s *Server) handleNormalizeAttributes(w http.ResponseWriter, r *http.Request) {
	var req normalizeAttributesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	text, ok, err := s.service.NormalizeAttributes(r.Context(), req.Attributes, boolOr(req.Pack, true))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, cellResponse{Text: text, Present: ok})
}

type denormalizeAttributesRequest struct {
	Text   string `json:"text"`
	Unpack *bool  `json:"unpack,omitempty"`
}

// handleDenormalizeAttributes decodes one cell into an attribute object.
func (s *Server) handleDenormalizeAttributes(w http.ResponseWriter, r *http.Request) {
	var req denormalizeAttributesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	attrs, err := s.service.DenormalizeAttributes(r.Context(), req.Text, boolOr(req.Unpack, true))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if isHTMX(r) {
		s.renderFragment(w, r, templates.AttributeTable(attrs))
		return
	}
	writeJSON(w, map[string]any{"attributes": attrs})
}

type denormalizeBatchRequest struct {
	Cells  []string `json:"cells"`
	Unpack *bool    `json:"unpack,omitempty"`
}

// handleDenormalizeBatch decodes many cells. Cells that fail are listed in
// the response; the request fails only when the batch as a whole cannot run.
func (s *Server) handleDenormalizeBatch(w http.ResponseWriter, r *http.Request) {
	var req denormalizeBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.DenormalizeBatch(r.Context(), req.Cells, boolOr(req.Unpack, true))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ----------------------------------------------------------------------------
// Category paths
// ----------------------------------------------------------------------------

type categoryRequest struct {
	Path string `json:"path"`
}

// handleNormalizeCategory re-renders a path with canonical quoting.
func (s *Server) handleNormalizeCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	path, ok := s.service.NormalizeCategory(req.Path)
	writeJSON(w, map[string]any{"path": path, "present": ok})
}

// handleExplodeCategory splits a path into segments.
func (s *Server) handleExplodeCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	segments := s.service.ExplodeCategory(req.Path)
	if segments == nil {
		segments = []string{}
	}
	writeJSON(w, map[string]any{"segments": segments})
}

type categoryListRequest struct {
	Cell string `json:"cell"`
}

// handleExplodeCategoryList splits a cell of several paths.
func (s *Server) handleExplodeCategoryList(w http.ResponseWriter, r *http.Request) {
	var req categoryListRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	paths := s.service.ExplodeCategoryList(req.Cell)
	if paths == nil {
		paths = [][]string{}
	}
	writeJSON(w, map[string]any{"paths": paths})
}

// handleDenormalizeCategory always answers 501.
func (s *Server) handleDenormalizeCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	if _, err := s.service.DenormalizeCategory(req.Path); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondError(w, r, codec.ErrUnsupported)
}
