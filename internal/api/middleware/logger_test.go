package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("nope"))
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/articles/9", nil)
	r.Header.Set("Authorization", "Bearer secret-token")
	h.ServeHTTP(httptest.NewRecorder(), r)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, 4, entry.Data["bytes"])
	assert.Equal(t, "/api/articles/9", entry.Data["path"])
	for _, v := range entry.Data {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "secret-token")
		}
	}
}
