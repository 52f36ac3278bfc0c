package common

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, http.StatusForbidden, "nope")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
}

func TestRespondWithServiceError_HidesInternals(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	rec := httptest.NewRecorder()
	RespondWithServiceError(rec, log, errors.New("pq: password authentication failed for user admin"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"`+MsgInternal+`"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "password authentication failed")
}

func TestRespondWithServiceError_PublicMessage(t *testing.T) {
	log := logrus.New()
	rec := httptest.NewRecorder()
	RespondWithServiceError(rec, log, WithMessage(ErrTokenExpired, "Токен истек."))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Токен истек."}`, rec.Body.String())
}

func TestRespondWithServiceError_FallsBackToStatusText(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithServiceError(rec, logrus.New(), ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}
