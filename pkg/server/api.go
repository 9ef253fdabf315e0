package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/matzehuels/signboard/pkg/codec"
	sberrors "github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/widget"
)

const maxBodySize = 1 << 20

// WidgetInfo is the JSON form of a registered descriptor.
type WidgetInfo struct {
	Type        string        `json:"type"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Icon        string        `json:"icon,omitempty"`
	MinW        int           `json:"minW"`
	MinH        int           `json:"minH"`
	MaxW        int           `json:"maxW,omitempty"`
	MaxH        int           `json:"maxH,omitempty"`
	DefaultW    int           `json:"defaultW"`
	DefaultH    int           `json:"defaultH"`
	Defaults    widget.Config `json:"defaults"`
	HasEditor   bool          `json:"hasEditor"`
}

// NewWidgetInfo describes d.
func NewWidgetInfo(d widget.Descriptor) WidgetInfo {
	return WidgetInfo{
		Type: d.Type, Name: d.Name, Description: d.Description, Icon: d.Icon,
		MinW: d.MinW, MinH: d.MinH, MaxW: d.MaxW, MaxH: d.MaxH,
		DefaultW: d.DefaultW, DefaultH: d.DefaultH,
		Defaults:  d.Defaults(),
		HasEditor: d.HasEditor(),
	}
}

// EncodeResponse is returned by POST /api/encode.
type EncodeResponse struct {
	Token    string   `json:"token"`
	URL      string   `json:"url"`
	Warnings []string `json:"warnings,omitempty"`
}

// DecodeResponse is returned by GET /api/decode.
type DecodeResponse struct {
	Config   layout.DisplayConfig `json:"config"`
	Fallback bool                 `json:"fallback"`
}

// LinkRequest is the body of POST /api/links.
type LinkRequest struct {
	Token string `json:"token"`
}

// LinkResponse is returned by POST /api/links.
type LinkResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleWidgets(w http.ResponseWriter, _ *http.Request) {
	descs := s.opts.Registry.Descriptors()
	out := make([]WidgetInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, NewWidgetInfo(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	cfg, err := layout.Read(io.LimitReader(r.Body, maxBodySize), layout.FormatJSON)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := codec.Encode(cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := EncodeResponse{Token: token, URL: s.displayURL(token)}
	for _, e := range layout.CheckBounds(cfg) {
		resp.Warnings = append(resp.Warnings, sberrors.UserMessage(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decode(r.URL.Query().Get("config"))
	writeJSON(w, http.StatusOK, DecodeResponse{Config: cfg, Fallback: !ok})
}

func (s *Server) handleShorten(w http.ResponseWriter, r *http.Request) {
	if s.opts.Links == nil {
		writeError(w, sberrors.New(sberrors.ErrCodeNotFound, "short links are disabled"))
		return
	}
	var req LinkRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, sberrors.Wrap(sberrors.ErrCodeInvalidInput, err, "parse link request"))
		return
	}
	if _, err := codec.Decode(req.Token); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.opts.Links.Shorten(r.Context(), req.Token)
	if err != nil {
		s.logger.Error("shorten", "err", err)
		writeError(w, sberrors.Wrap(sberrors.ErrCodeUnavailable, err, "store short link"))
		return
	}
	writeJSON(w, http.StatusCreated, LinkResponse{ID: id, URL: s.opts.BaseURL + "/s/" + id})
}

func (s *Server) displayURL(token string) string {
	return s.opts.BaseURL + "/display?config=" + url.QueryEscape(token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with the status of err's code.
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: sberrors.UserMessage(err), Code: string(sberrors.GetCode(err))}
	writeJSON(w, sberrors.HTTPStatus(err), resp)
}
