package web

import (
	"net/http"
	"strconv"

	"quire/internal/publish"
)

func (s *Server) collect(r *http.Request) (publish.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return publish.Collect(s.sess.Store(), r.URL.Query().Get("root"))
}

func (s *Server) renderOptions(r *http.Request) publish.WriteOptions {
	bookmarks := true
	if v := r.URL.Query().Get("bookmarks"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			bookmarks = b
		}
	}
	return publish.WriteOptions{
		Render:      publish.RenderOptions{IncludeBookmarks: bookmarks, Title: s.cfg.Title},
		PDF:         s.cfg.PDF,
		PDFRenderer: s.cfg.PDFRenderer,
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	doc, err := s.collect(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	opt := s.renderOptions(r)
	opt.Render.LiveReload = "/ws"
	page, err := publish.RenderHTML(doc.Views, doc.Bookmarks, opt.Render)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(page))
}

var contentTypes = map[publish.Format]string{
	publish.FormatHTML:     "text/html; charset=utf-8",
	publish.FormatMarkdown: "text/markdown; charset=utf-8",
	publish.FormatPDF:      "application/pdf",
}

// handleExport renders outside the lock; the collected document is a detached copy.
func (s *Server) handleExport(f publish.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := s.collect(r)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		b, err := publish.Render(r.Context(), doc, f, s.renderOptions(r))
		if err != nil {
			s.log.Warn().Err(err).Str("format", string(f)).Msg("web export failed")
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", contentTypes[f])
		w.Header().Set("Content-Disposition", `inline; filename="quire-export.`+string(f)+`"`)
		_, _ = w.Write(b)
	}
}
