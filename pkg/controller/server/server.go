package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
	"github.com/secmon-lab/repogov/pkg/repository"
	"github.com/secmon-lab/repogov/pkg/utils/errutil"
	"github.com/secmon-lab/repogov/pkg/utils/logging"
)

type Server struct {
	mux *chi.Mux
}

func safeWrite(w http.ResponseWriter, code int, body []byte) {
	w.WriteHeader(code)

	if _, err := w.Write(body); err != nil {
		logging.Default().Error("fail to write response", slog.Any("error", err))
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		logging.Default().Error("fail to encode response", slog.Any("error", err))
		safeWrite(w, http.StatusInternalServerError, []byte(`{"error":"failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	safeWrite(w, code, raw)
}

func New(uc interfaces.UseCase) *Server {
	r := chi.NewRouter()
	r.Use(preProcess)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		safeWrite(w, http.StatusOK, []byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Route("/repositories", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				reports, err := uc.ListComplianceReports(r.Context())
				if err != nil {
					errutil.HandleError(r.Context(), "fail to list compliance reports", err)
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reports"})
					return
				}

				writeJSON(w, http.StatusOK, reports)
			})
			r.Get("/{name}", func(w http.ResponseWriter, r *http.Request) {
				report, err := getReport(r, uc)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						writeJSON(w, http.StatusNotFound, map[string]string{"error": "repository not found"})
						return
					}
					errutil.HandleError(r.Context(), "fail to get compliance report", err)
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get report"})
					return
				}

				writeJSON(w, http.StatusOK, report)
			})
			r.Get("/{name}/badge", func(w http.ResponseWriter, r *http.Request) {
				report, err := getReport(r, uc)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					errutil.HandleError(r.Context(), "fail to get compliance report for badge", err)
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get report"})
					return
				}

				// A missing repository still renders a badge: the not-found
				// variant, so embedded README images never break.
				http.Redirect(w, r, model.BadgeShieldURL(report), http.StatusFound)
			})
		})
		r.Post("/sync", func(w http.ResponseWriter, r *http.Request) {
			// The request context dies with the response; the sync keeps
			// running on a detached context.
			bgCtx := DetachContext(r.Context())

			go func() {
				if err := uc.SyncRepositories(bgCtx); err != nil {
					errutil.HandleError(bgCtx, "fail to sync repositories", err)
				}
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"status":  "accepted",
				"message": "sync started",
			})
		})
	})

	return &Server{
		mux: r,
	}
}

func getReport(r *http.Request, uc interfaces.UseCase) (*model.ComplianceReport, error) {
	name := types.RepoName(chi.URLParam(r, "name"))
	return uc.GetComplianceReport(r.Context(), name)
}

func (x *Server) Mux() *chi.Mux {
	return x.mux
}
