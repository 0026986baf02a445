// internal/app/store/reviews/reviews.go
//
// Package reviews implements the single-shot pending → approved|rejected
// transition shared by enrollment requests, drop recommendations and appeals.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotPending is matched by errors.Is on a NotPendingError.
var ErrNotPending = errors.New("record is not pending")

// NotPendingError reports the status a record already holds.
type NotPendingError struct {
	Status string
}

func (e *NotPendingError) Error() string {
	return fmt.Sprintf("record is already %s", e.Status)
}

func (e *NotPendingError) Is(target error) bool { return target == ErrNotPending }

// Decision is the outcome being recorded.
type Decision struct {
	ReviewerID primitive.ObjectID
	Decision   models.Decision
	Note       string
	At         time.Time
}

// Decide atomically moves the record id in c from pending to the decision's
// status and decodes the updated document into out. It returns
// mongo.ErrNoDocuments when id does not exist and a *NotPendingError when the
// record was already reviewed. Concurrent callers race on the status filter,
// so exactly one succeeds.
func Decide(ctx context.Context, c *mongo.Collection, id primitive.ObjectID, d Decision, out any) error {
	if d.At.IsZero() {
		d.At = time.Now().UTC()
	}
	update := bson.M{"$set": bson.M{
		"status":         d.Decision.Status(),
		"reviewed_by_id": d.ReviewerID,
		"reviewed_at":    d.At,
		"review_note":    d.Note,
		"updated_at":     d.At,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := c.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": models.StatusPending}, update, opts).Decode(out)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	var cur struct {
		Status string `bson:"status"`
	}
	findOpts := options.FindOne().SetProjection(bson.M{"status": 1})
	if err := c.FindOne(ctx, bson.M{"_id": id}, findOpts).Decode(&cur); err != nil {
		return err
	}
	return &NotPendingError{Status: cur.Status}
}

// StatusFilter returns a filter matching status, or everything when status
// is empty.
func StatusFilter(status string) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}
