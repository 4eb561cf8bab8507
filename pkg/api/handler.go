package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"mealcheck/pkg/collection"
)

//go:embed templates/*.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type handler struct {
	svc Collector
}

func newHandler(svc Collector) *handler {
	return &handler{svc: svc}
}

func (h *handler) getHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *handler) getIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{
		Sheets: h.svc.ListSheets(r.Context()),
	}
	if len(page.Sheets) > 0 {
		page.Sheet = page.Sheets[0]
	}

	h.render(w, http.StatusOK, page)
}

func (h *handler) postLookup(w http.ResponseWriter, r *http.Request) {
	page := indexPage{
		Sheets: h.svc.ListSheets(r.Context()),
		Sheet:  r.FormValue("sheet"),
		Roll:   strings.TrimSpace(r.FormValue("roll")),
	}

	record, err := h.svc.Lookup(r.Context(), page.Sheet, page.Roll)
	if err != nil {
		page.Error = err.Error()
		h.render(w, statusCode(err), page)
		return
	}

	page.Student = newStudentCard(*record)
	h.render(w, http.StatusOK, page)
}

// postCollect marks the held record as collected and renders it again with
// the new timestamp, without reading the sheet.
func (h *handler) postCollect(w http.ResponseWriter, r *http.Request) {
	page := indexPage{
		Sheets: h.svc.ListSheets(r.Context()),
		Sheet:  r.FormValue("sheet"),
	}

	record, err := heldRecord(r.FormValue)
	if err != nil {
		page.Error = collection.MsgInvalidRow
		h.render(w, http.StatusBadRequest, page)
		return
	}
	page.Student = newStudentCard(record)

	timestamp, err := h.svc.MarkCollected(r.Context(), page.Sheet, record.RowPosition, record.StatusColumn)
	if err != nil {
		page.Error = err.Error()
		h.render(w, statusCode(err), page)
		return
	}

	logCollected(r, page.Sheet, record.RowPosition, timestamp)

	page.Student = newStudentCard(record.WithStatus(timestamp))
	page.Notice = record.Name + " marked as collected."
	h.render(w, http.StatusOK, page)
}

func (h *handler) getSpreadsheet(w http.ResponseWriter, r *http.Request) {
	md, err := h.svc.Metadata(r.Context())
	if err != nil {
		sendError(w, statusCode(err), err.Error())
		return
	}

	sendJSON(w, http.StatusOK, md)
}

func (h *handler) getSheets(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, sheetsResponse{Sheets: h.svc.ListSheets(r.Context())})
}

func (h *handler) getStudent(w http.ResponseWriter, r *http.Request) {
	sheet := urlParam(r, "sheet")
	suffix := urlParam(r, "suffix")

	record, err := h.svc.Lookup(r.Context(), sheet, suffix)
	if err != nil {
		sendError(w, statusCode(err), err.Error())
		return
	}

	sendJSON(w, http.StatusOK, newStudentResponse(*record))
}

func (h *handler) postCollectRow(w http.ResponseWriter, r *http.Request) {
	sheet := urlParam(r, "sheet")
	row, err := strconv.Atoi(urlParam(r, "row"))
	if err != nil {
		sendError(w, http.StatusBadRequest, collection.MsgInvalidRow)
		return
	}

	var rq collectRequest
	if err := json.NewDecoder(r.Body).Decode(&rq); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	timestamp, err := h.svc.MarkCollected(r.Context(), sheet, row, rq.StatusColumn)
	if err != nil {
		sendError(w, statusCode(err), err.Error())
		return
	}

	logCollected(r, sheet, row, timestamp)

	sendJSON(w, http.StatusOK, collectResponse{
		Sheet:       sheet,
		RowPosition: row,
		CollectedAt: timestamp,
	})
}

func logCollected(r *http.Request, sheet string, row int, timestamp string) {
	log.WithFields(log.Fields{
		"user":  requestUser(r),
		"sheet": sheet,
		"row":   row,
	}).Infof("collected at %s", timestamp)
}

func (h *handler) render(w http.ResponseWriter, status int, page indexPage) {
	var b bytes.Buffer
	if err := indexTemplate.Execute(&b, page); err != nil {
		log.Errorf("Error formatting page: %v", err)
		http.Error(w, "Error formatting page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(b.Bytes())
}

// urlParam returns a decoded route parameter. chi matches on the escaped
// path when a sheet title contains a reserved character such as '/'.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Errorf("Error encoding response: %v", err)
		sendResponse(w, http.StatusInternalServerError, []byte(`{"error":"internal error"}`))
		return
	}
	sendResponse(w, status, body)
}

func sendError(w http.ResponseWriter, status int, msg string) {
	sendJSON(w, status, errorResponse{Error: msg})
}

func sendResponse(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
