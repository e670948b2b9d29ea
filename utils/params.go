package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"recipeportal/errs"
)

// PositiveInt reads an optional query parameter that must be an integer >= 1.
// Absent or empty values yield def.
func PositiveInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errs.InvalidArgument(name + " must be a positive integer")
	}
	return n, nil
}

// DecodeJSON reads a JSON body of at most maxBytes into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errs.InvalidArgument("Request body too large")
		case errors.Is(err, io.EOF):
			return errs.InvalidArgument("Request body is empty")
		}
		return errs.InvalidArgument("Invalid request body")
	}
	return nil
}
