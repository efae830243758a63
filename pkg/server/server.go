// Package server exposes the filters over HTTP. A request body holds one
// text raster; the response is the filtered raster, or a PNG rendering.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/filter"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/ppm"
)

// MaxBodySize bounds an uploaded raster.
const MaxBodySize = 64 << 20

type Server struct {
	router *mux.Router
	log    logrus.FieldLogger
}

type filterInfo struct {
	Name   string `json:"name"`
	Output string `json:"output"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(log logrus.FieldLogger) *Server {
	s := &Server{router: mux.NewRouter(), log: log}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/filters", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/filters/{name}", s.handleApply).Methods(http.MethodPost)
	s.router.Use(s.logRequests)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var out []filterInfo
	for _, k := range filter.Kinds() {
		out = append(out, filterInfo{Name: k.String(), Output: k.Output()})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	kind, err := filter.ParseKind(mux.Vars(r)["name"])
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}

	im, err := decodeBody(r.Header.Get("Content-Type"), body)
	if err != nil {
		s.writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()})
		return
	}
	pixels, skipped, dropped := im.Pixels()
	out := filter.Apply(kind.Func(), pixels)
	if skipped > 0 || dropped > 0 {
		s.log.WithFields(logrus.Fields{
			"filter":  kind.String(),
			"skipped": skipped,
			"dropped": dropped,
		}).Warn("malformed pixel data ignored")
	}

	if r.URL.Query().Get("format") == "png" {
		img, err := ppm.ToNRGBA(im, out)
		if err != nil {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := imaging.Encode(w, img, imaging.PNG); err != nil {
			s.log.WithError(err).Error("png encode")
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+kind.Output()+`"`)
	if _, err := w.Write(ppm.Encode(im, out)); err != nil {
		s.log.WithError(err).Error("write response")
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("request")
	})
}

// decodeBody reads a text raster, or any image format imaging can decode
// when the content type is image/*.
func decodeBody(contentType string, body []byte) (*ppm.Image, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.HasPrefix(mediaType, "image/") || mediaType == "image/x-portable-pixmap" {
		return ppm.Decode(string(body)), nil
	}
	img, err := imaging.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mediaType, err)
	}
	return ppm.FromImage(img), nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("write json response")
	}
}
