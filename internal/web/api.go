package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"quire/internal/model"
	"quire/internal/mutate"
	"quire/internal/projection"
	"quire/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

type apiRow struct {
	ID          string         `json:"id"`
	Type        model.NodeType `json:"type"`
	Label       string         `json:"label"`
	Depth       int            `json:"depth"`
	HasChildren bool           `json:"hasChildren"`
	Collapsed   bool           `json:"collapsed"`
	Pinned      bool           `json:"pinned"`
}

func apiRows(rows []projection.Row) []apiRow {
	out := make([]apiRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, apiRow{
			ID:          r.Node.ID,
			Type:        r.Node.Type,
			Label:       projection.Label(r.Node),
			Depth:       r.Depth,
			HasChildren: r.HasChildren,
			Collapsed:   r.Collapsed,
			Pinned:      r.Node.Pinned,
		})
	}
	return out
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	db := s.sess.Store()
	body := map[string]any{
		"version": s.version,
		"active":  s.sess.ActiveID(),
		"pinned":  apiRows(projection.Pinned(db, db.Pinned())),
		"rows":    apiRows(projection.Flatten(db)),
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	marks, err := projection.Outline(s.sess.Store(), r.URL.Query().Get("root"))
	s.mu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if marks == nil {
		marks = []projection.Bookmark{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": marks})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v, err := projection.BuildView(s.sess.Store(), r.PathValue("id"))
	s.mu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type createRequest struct {
	Type   string `json:"type"`
	Parent string `json:"parent"`
	Before string `json:"before"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) (bool, error) {
	var req createRequest
	if err := decodeBody(w, r, &req); err != nil {
		return false, err
	}
	typ, ok := model.ParseNodeType(req.Type)
	if !ok {
		return false, fmt.Errorf("%w: %q", store.ErrInvalidNodeType, req.Type)
	}
	id, err := s.sess.Store().Create(typ, strings.TrimSpace(req.Parent), strings.TrimSpace(req.Before))
	if err != nil {
		return false, err
	}
	if err := s.sess.Select(id); err != nil {
		return false, err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	return true, nil
}

type patchRequest struct {
	Title     *string             `json:"title"`
	Content   json.RawMessage     `json:"content"`
	Collapsed *bool               `json:"collapsed"`
	Pinned    *bool               `json:"pinned"`
	Style     *model.HeadingStyle `json:"style"`
}

// handlePatch applies every field in one store update, so a bad field changes nothing.
func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) (bool, error) {
	var req patchRequest
	if err := decodeBody(w, r, &req); err != nil {
		return false, err
	}
	db := s.sess.Store()
	id := r.PathValue("id")
	n, ok := db.FindNode(id)
	if !ok {
		return false, store.NotFoundError{Kind: "node", ID: id}
	}
	if req.Title != nil && len(req.Content) > 0 {
		return false, errors.New("title and content are mutually exclusive")
	}

	p := store.Patch{Collapsed: req.Collapsed, Pinned: req.Pinned, Style: req.Style}
	switch {
	case req.Title != nil:
		c, err := titleContent(n, *req.Title)
		if err != nil {
			return false, err
		}
		p.Content = c
	case len(req.Content) > 0:
		c, err := model.DecodeContent(n.Type, func(dst any) error { return json.Unmarshal(req.Content, dst) })
		if err != nil {
			return false, fmt.Errorf("%s content: %w", n.Type, err)
		}
		p.Content = c
	}
	if err := db.Update(id, p); err != nil {
		return false, err
	}
	v, err := projection.BuildView(db, id)
	if err != nil {
		return false, err
	}
	writeJSON(w, http.StatusOK, v)
	return true, nil
}

// titleContent mirrors inline rename: trimmed, "Untitled" when blank.
func titleContent(n model.Node, title string) (model.Content, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	switch n.Type {
	case model.NodeHeading, model.NodeSubheading:
		return model.Title(title), nil
	case model.NodeText:
		return model.RichText(title), nil
	default:
		return nil, store.ContentMismatchError{NodeID: n.ID, Type: n.Type, Kind: "title"}
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) (bool, error) {
	deleted, err := s.sess.Delete(r.PathValue("id"))
	if err != nil {
		return false, err
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
	return true, nil
}

type dropRequest struct {
	Dragged string `json:"dragged"`
	// Over lists the containers hovered on the way, in order; collapsed ones open for the drag.
	Over   []string `json:"over"`
	Target string   `json:"target"`
}

type dropResponse struct {
	Rule       string `json:"rule"`
	Changed    bool   `json:"changed"`
	FromParent string `json:"fromParent"`
	ToParent   string `json:"toParent"`
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) (bool, error) {
	var req dropRequest
	if err := decodeBody(w, r, &req); err != nil {
		return false, err
	}
	if err := s.sess.StartDrag(strings.TrimSpace(req.Dragged)); err != nil {
		return false, err
	}
	for _, id := range req.Over {
		s.sess.DragOver(id)
	}
	res, err := s.sess.Drop(strings.TrimSpace(req.Target))
	if err != nil {
		return false, err
	}
	writeJSON(w, http.StatusOK, dropResponse{
		Rule:       res.Rule.String(),
		Changed:    res.Changed,
		FromParent: res.FromParent,
		ToParent:   res.ToParent,
	})
	return res.Changed, nil
}

type moveRequest struct {
	ID  string `json:"id"`
	Dir string `json:"dir"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) (bool, error) {
	var req moveRequest
	if err := decodeBody(w, r, &req); err != nil {
		return false, err
	}
	var dir mutate.Direction
	switch strings.ToLower(strings.TrimSpace(req.Dir)) {
	case "up":
		dir = mutate.Up
	case "down":
		dir = mutate.Down
	default:
		return false, fmt.Errorf("dir must be up or down, got %q", req.Dir)
	}
	swapped, err := mutate.MoveSibling(s.sess.Store(), strings.TrimSpace(req.ID), dir)
	if err != nil {
		return false, err
	}
	writeJSON(w, http.StatusOK, map[string]any{"swappedWith": swapped})
	return swapped != "", nil
}
