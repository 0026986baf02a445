package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/dexterhub/internal/app/features/health"
	"github.com/dalemusser/dexterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type body struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), zap.NewNop())

	rec := httptest.NewRecorder()
	health.Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	testutil.AssertStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got body
	testutil.DecodeJSON(t, rec, &got)
	if got.Status != "ok" || got.Database != "connected" {
		t.Errorf("body = %+v", got)
	}
}

type downDB struct{}

func (downDB) Ping(context.Context, *readpref.ReadPref) error { return errors.New("no reachable servers") }

func TestServe_DatabaseDown(t *testing.T) {
	h := health.NewHandler(downDB{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
	var got body
	testutil.DecodeJSON(t, rec, &got)
	if got.Status != "error" || got.Database != "disconnected" {
		t.Errorf("body = %+v", got)
	}
}
