package formutil_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type payload struct {
	CohortID string `json:"cohortId" validate:"required,objectid"`
	Note     string `json:"note"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestBind(t *testing.T) {
	valid := primitive.NewObjectID().Hex()
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"valid", `{"cohortId":"` + valid + `","note":"hi"}`, ""},
		{"malformed json", `{"cohortId":`, formutil.BodyField},
		{"unknown field", `{"cohortId":"` + valid + `","extra":1}`, formutil.BodyField},
		{"missing id", `{}`, "cohortId"},
		{"bad id", `{"cohortId":"nope"}`, "cohortId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := formutil.Bind(post(tt.body), &p)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Bind: %v", err)
				}
				return
			}
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if _, ok := ve.FieldMap()[tt.wantField]; !ok {
				t.Errorf("fields = %v, want %q", ve.FieldMap(), tt.wantField)
			}
		})
	}
}

func withParam(key, value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPathID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := formutil.PathID(withParam("id", id.Hex()), "id", "appeal")
	if err != nil || got != id {
		t.Fatalf("PathID = %v, %v", got, err)
	}
	if _, err := formutil.PathID(withParam("id", "zzz"), "id", "appeal"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("malformed id: err = %v, want NotFound", err)
	}
}

func TestQueryID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?cohortId=", nil)
	if got, err := formutil.QueryID(r, "cohortId"); got != nil || err != nil {
		t.Errorf("empty: %v %v", got, err)
	}
	r = httptest.NewRequest(http.MethodGet, "/?cohortId=bad", nil)
	var ve *apperr.ValidationError
	if _, err := formutil.QueryID(r, "cohortId"); !errors.As(err, &ve) {
		t.Errorf("bad: err = %v", err)
	}
}
