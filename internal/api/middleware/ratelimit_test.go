package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	log, hook := test.NewNullLogger()

	h := RateLimit(rdb, "auth", 2, time.Minute, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:3333"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1111"), "other clients unaffected")

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111"))

	// Redis outage: requests pass, a warning is logged.
	mr.Close()
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111"))
	assert.NotEmpty(t, hook.AllEntries())
}
