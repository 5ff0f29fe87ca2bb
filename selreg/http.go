// CLAUDE:SUMMARY Chi handlers for registry admin — list pages, fetch sets, publish new versions, manage active pins.
package selreg

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterHTTP mounts the registry admin endpoints on a chi router. When cat
// is nil, publications are registered in memory only.
func RegisterHTTP(r chi.Router, reg *Registry, cat *Catalog) {
	r.Get("/selectors/pages", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"pages": reg.Pages()})
	})

	r.Get("/selectors/pages/{pageID}", func(w http.ResponseWriter, req *http.Request) {
		ps, err := reg.Page(chi.URLParam(req, "pageID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ps)
	})

	r.Get("/selectors/pages/{pageID}/versions", func(w http.ResponseWriter, req *http.Request) {
		pageID := chi.URLParam(req, "pageID")
		versions, err := reg.Versions(pageID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"page": pageID, "versions": versions})
	})

	r.Post("/selectors/pages", func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(io.LimitReader(req.Body, 1<<20))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ps, err := ParsePageSet(body)
		if err != nil {
			writeError(w, err)
			return
		}
		if cat != nil {
			err = cat.Publish(req.Context(), reg, ps, req.Header.Get("X-Published-By"))
		} else {
			err = reg.Register(ps)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"page": ps.PageID, "version": ps.Version})
	})

	r.Put("/selectors/pages/{pageID}/active", func(w http.ResponseWriter, req *http.Request) {
		pageID := chi.URLParam(req, "pageID")
		var in struct {
			Version int `json:"version"`
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var err error
		if cat != nil {
			err = cat.PinActive(req.Context(), reg, pageID, in.Version)
		} else {
			err = reg.Pin(pageID, in.Version)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"page": pageID, "active": in.Version})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var nf *NotFoundError
	var cf *ConflictError
	var vf *ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &cf):
		status = http.StatusConflict
	case errors.As(err, &vf):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
