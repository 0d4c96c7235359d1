package controller

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"bikerental-server/internal/modules/rental/repository"
	"bikerental-server/internal/modules/rental/service"
	"bikerental-server/internal/modules/rental/types"
	"bikerental-server/internal/modules/rental/views"
	"bikerental-server/internal/utils"
)

const maxFormBytes = 64 << 10

func (c *rentalControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	c.render(w, r, nil, nil)
}

// handlePredict always answers 200: input and model failures are shown on the page.
func (c *rentalControllerImpl) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	var out types.Outcome
	if err := r.ParseForm(); err != nil {
		slog.Info("predict: parse form failed", "error", err)
		out = types.Outcome{Err: fmt.Errorf("%w: could not read form submission", service.ErrInput)}
	} else {
		out = c.evaluator.Predict(r.Context(), r.PostForm)
	}
	c.render(w, r, r.PostForm, &out)
}

func (c *rentalControllerImpl) render(w http.ResponseWriter, r *http.Request, form url.Values, out *types.Outcome) {
	data := views.NewPageData(form, out)
	info := c.evaluator.Info()
	data.ModelName, data.ModelVersion = info.Name, info.Version

	renderFn := views.RenderPage
	if r.Header.Get("HX-Request") == "true" {
		renderFn = views.RenderResultPartial
	}

	var buf bytes.Buffer
	if err := renderFn(&buf, data); err != nil {
		slog.Error("page template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("write response failed", "path", r.URL.Path, "error", err)
	}
}

func (c *rentalControllerImpl) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimitQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	predictions, err := c.repository.GetRecentPredictions(r.Context(), limit)
	if err != nil {
		slog.Error("recent predictions: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load predictions")
		return
	}
	utils.WriteJSON(w, http.StatusOK, predictions)
}

func (c *rentalControllerImpl) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimitQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	predictions, err := c.repository.GetRecentPredictions(r.Context(), limit)
	if err != nil {
		slog.Error("export predictions: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load predictions")
		return
	}

	var buf bytes.Buffer
	if err := repository.WriteCSV(&buf, predictions); err != nil {
		slog.Error("export predictions: encode failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to encode predictions")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="predictions.csv"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("export predictions: write response failed", "error", err)
	}
}
