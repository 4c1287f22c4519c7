package handlers

import (
	"net/http"

	"lead-bridge/internal/common/errors"
	"lead-bridge/internal/common/logging"
	"lead-bridge/internal/pipeline"
)

// Integra receives one lead-capture form submission and runs the
// integration pipeline for it.
func (h *Handlers) Integra(w http.ResponseWriter, r *http.Request) {
	fields, err := parseSubmission(r)
	if err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	err = h.pipeline.Run(r.Context(), r.Header.Get("User-Agent"), fields)
	if err != nil {
		if pipeline.IsRejection(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		logging.Error("Integration pipeline failed", err)
		http.Error(w, "integration failed", errors.HTTPStatus(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Integration completed successfully."))
}
