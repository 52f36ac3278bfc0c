package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const MsgBadPayload = "Некорректный формат запроса."

// Middleware is a chi-compatible middleware constructor result.
type Middleware = func(http.Handler) http.Handler

func passThrough(next http.Handler) http.Handler { return next }

func orPassThrough(m Middleware) Middleware {
	if m == nil {
		return passThrough
	}
	return m
}

// idParam reads the numeric {id} URL parameter. Routes constrain it to
// digits, so failure only happens on overflow.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// maxBodyBytes bounds request bodies; article content is the largest field.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
