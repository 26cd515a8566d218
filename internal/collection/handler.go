package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zjoart/kenshicollection/internal/catalog"
	"github.com/zjoart/kenshicollection/internal/export"
	"github.com/zjoart/kenshicollection/internal/render"
	"github.com/zjoart/kenshicollection/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details interface{}) {
	payload := map[string]interface{}{"error": msg}
	if details != nil {
		payload["details"] = details
	}
	writeJSON(w, status, payload)
}

// writeServiceError maps service errors to responses; op names the failing call in the log.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrCatalogUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Catalog unavailable", map[string]string{"details": err.Error()})
	case errors.Is(err, ErrUnknownKey):
		writeError(w, http.StatusNotFound, "Unknown item", map[string]string{"details": err.Error()})
	case errors.Is(err, ErrNotConfirmed):
		writeError(w, http.StatusBadRequest, "Reset requires confirm=true", nil)
	case errors.Is(err, render.ErrNoItems):
		writeError(w, http.StatusUnprocessableEntity, "No owned items to render", nil)
	case errors.Is(err, render.ErrUnknownTheme):
		writeError(w, http.StatusBadRequest, "Unknown theme", map[string]string{"details": err.Error()})
	case errors.Is(err, export.ErrUnknownKind):
		writeError(w, http.StatusNotFound, "Unknown image kind", nil)
	case errors.Is(err, ErrNoRender):
		writeError(w, http.StatusNotFound, "Nothing rendered yet", nil)
	default:
		logger.Error(op+" failed", logger.WithError(err))
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// RegisterRoutes mounts collection endpoints onto router
func RegisterRoutes(r *mux.Router, svc *Service) {
	r.HandleFunc("/categories", func(w http.ResponseWriter, req *http.Request) {
		nodes, err := svc.Categories()
		if err != nil {
			writeServiceError(w, "categories", err)
			return
		}
		writeJSON(w, http.StatusOK, nodes)
	}).Methods("GET")

	r.HandleFunc("/items", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		sel := catalog.Selection{Category: q.Get("category"), SubCategory: q.Get("sub")}
		groups, err := svc.Items(sel)
		if err != nil {
			writeServiceError(w, "items", err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}).Methods("GET")

	r.HandleFunc("/owned", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"keys": svc.OwnedKeys()})
	}).Methods("GET")

	r.HandleFunc("/owned/{key}/toggle", func(w http.ResponseWriter, req *http.Request) {
		key := mux.Vars(req)["key"]
		owned, err := svc.Toggle(req.Context(), key)
		if err != nil {
			writeServiceError(w, "toggle", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"key": key, "owned": owned})
	}).Methods("POST")

	r.HandleFunc("/owned", func(w http.ResponseWriter, req *http.Request) {
		confirm, _ := strconv.ParseBool(req.URL.Query().Get("confirm"))
		if err := svc.Clear(req.Context(), confirm); err != nil {
			writeServiceError(w, "clear", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "cleared"})
	}).Methods("DELETE")

	r.HandleFunc("/progress", func(w http.ResponseWriter, req *http.Request) {
		p, err := svc.Progress()
		if err != nil {
			writeServiceError(w, "progress", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}).Methods("GET")

	r.HandleFunc("/progress/chart", func(w http.ResponseWriter, req *http.Request) {
		var buf bytes.Buffer
		if err := svc.Chart(&buf); err != nil {
			writeServiceError(w, "chart", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}).Methods("GET")

	r.HandleFunc("/themes", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, svc.Themes())
	}).Methods("GET")

	r.HandleFunc("/render", func(w http.ResponseWriter, req *http.Request) {
		var body RenderRequest
		if req.ContentLength != 0 {
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "Validation failed", map[string]string{"body": err.Error()})
				return
			}
		}
		res, err := svc.Generate(req.Context(), body)
		if err != nil {
			writeServiceError(w, "render", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}).Methods("POST")

	r.HandleFunc("/render/{kind}", func(w http.ResponseWriter, req *http.Request) {
		img, err := latest(mux.Vars(req)["kind"], svc)
		if err != nil {
			writeServiceError(w, "latest image", err)
			return
		}
		w.Header().Set("Content-Type", img.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
		if dl, _ := strconv.ParseBool(req.URL.Query().Get("download")); dl {
			w.Header().Set("Content-Disposition", `attachment; filename="`+img.FileName+`"`)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(img.Data)
	}).Methods("GET")

	r.HandleFunc("/render/{kind}/preview", func(w http.ResponseWriter, req *http.Request) {
		img, err := latest(mux.Vars(req)["kind"], svc)
		if err != nil {
			writeServiceError(w, "preview", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":         img.ID,
			"file_name":  img.FileName,
			"created_at": img.CreatedAt,
			"data_url":   img.DataURL(),
		})
	}).Methods("GET")
}

func latest(kind string, svc *Service) (*export.Image, error) {
	k, err := export.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return svc.Latest(k)
}
