// Package formutil binds JSON request payloads and URL parameters.
//
// Every failure is returned as an apperr value so handlers can pass it
// straight to the error responder:
//
//	var req applyRequest
//	if err := formutil.Bind(r, &req); err != nil {
//		h.ErrLog.Respond(w, r, err)
//		return
//	}
package formutil

import (
	"net/http"
	"strings"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/inputval"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BodyField is the field name reported for an unreadable body.
const BodyField = "body"

// Bind decodes the JSON body into dst and validates its struct tags.
func Bind(r *http.Request, dst any) error {
	if err := respond.Decode(r, dst); err != nil {
		return apperr.Invalid(BodyField, "must be a single valid JSON object")
	}
	return inputval.Struct(dst)
}

// PathID reads the chi URL parameter key as an ObjectID. A missing or
// malformed id names no record, so it is reported as NotFound(kind).
func PathID(r *http.Request, key, kind string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(kind)
	}
	return oid, nil
}

// OptionalID parses hex when present. Validation reports under field.
func OptionalID(field, hex string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(hex) == "" {
		return nil, nil
	}
	oid, err := inputval.ObjectID(field, hex)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

// QueryID parses the query parameter key, or returns nil when absent.
func QueryID(r *http.Request, key string) (*primitive.ObjectID, error) {
	return OptionalID(key, r.URL.Query().Get(key))
}
