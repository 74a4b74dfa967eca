package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"flames/compat"
	"flames/db"
	"flames/logger"
)

//go:embed templates static
var assets embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"isSelect": func(f compat.Feature) bool { return f.Kind == compat.KindSelect },
	"isSlider": func(f compat.Feature) bool { return f.Kind == compat.KindSlider },
}).ParseFS(assets, "templates/index.html"))

var staticFiles = mustSub(assets, "static")

// Multipart parts beyond this size spill to temporary files.
const maxFormMemory = 32 << 10

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Predictor scores filled-in forms. *compat.Predictor implements it.
type Predictor interface {
	PredictAnswers(ctx context.Context, answers compat.Answers) (compat.Verdict, error)
	ModelType() string
}

// HistoryReader lists stored predictions. *db.HistoryStore implements it.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]db.Prediction, error)
	Count(ctx context.Context) (map[int]int, error)
}

type handlers struct {
	predictor Predictor
	history   HistoryReader
	log       *zap.Logger
}

type pageData struct {
	Features    []compat.Feature
	Values      map[string]string
	FieldErrors map[string]string
	Result      *compat.Result
	Consolation string
}

func (h *handlers) registerPages(mux *http.ServeMux) {
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFiles)))
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /{$}", h.handleSubmit)
}

func (h *handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, newPageData(compat.DefaultAnswers()))
}

func (h *handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	answers, err := compat.ParseForm(r.PostForm)
	data := newPageData(answers)
	if err != nil {
		var inputErr *compat.InputError
		if !errors.As(err, &inputErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data.FieldErrors = inputErr.Fields
		// Echo what the user typed, not the defaults that replaced it.
		for name := range inputErr.Fields {
			data.Values[name] = r.PostForm.Get(name)
		}
		h.renderPage(w, r, http.StatusBadRequest, data)
		return
	}

	result, err := compat.Present(h.predictor.PredictAnswers(r.Context(), answers))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data.Result = &result
	if !result.Celebrate {
		data.Consolation = compat.ConsolationMessage
	}
	h.renderPage(w, r, http.StatusOK, data)
}

func newPageData(answers compat.Answers) pageData {
	values := make(map[string]string)
	for name, v := range answers.Values() {
		values[name] = v[0]
	}
	return pageData{Features: compat.Features, Values: values}
}

func (h *handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.FromContext(r.Context(), h.log).Error("render page", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
