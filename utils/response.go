package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"recipeportal/errs"
	"recipeportal/logger"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// RespondWithJSON sends data as a JSON body with the given status.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithErr maps err to its status and public message. Server side
// failures are logged with their cause; the cause never reaches the client.
func RespondWithErr(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	RespondWithError(w, status, errs.PublicMessage(err))
}

type M map[string]any
