// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/studycircle/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach validators.
// On servers that don't support collMod/validators (e.g. some DocumentDB
// versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, validator bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if validator == nil {
			return
		}
		if err := setValidator(ctx, db, coll, validator); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersValidator())
	ensure("groups", groupsValidator())
	ensure("study_sessions", sessionsValidator())

	// Append-only; no validator needed.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErrMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------------ schemas ------------------------------ */

var (
	nonBlank  = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	str       = bson.M{"bsonType": "string"}
	stringSet = bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}, "uniqueItems": true}
	date      = bson.M{"bsonType": "date"}
)

func sizeOf(field string) bson.M {
	return bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + field, bson.A{}}}}
}

func disjoint(a, b string) bson.M {
	return bson.M{"$eq": bson.A{
		bson.M{"$size": bson.M{"$setIntersection": bson.A{
			bson.M{"$ifNull": bson.A{"$" + a, bson.A{}}},
			bson.M{"$ifNull": bson.A{"$" + b, bson.A{}}},
		}}},
		0,
	}}
}

func usersValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "password_hash", "created_at"},
			"properties": bson.M{
				"email":         nonBlank,
				"name":          str,
				"department":    str,
				"semester":      str,
				"password_hash": nonBlank,
				"created_at":    date,
			},
		},
	}
}

// groupsValidator carries the roster invariants as well as the shape:
// the roster never exceeds max_members, rosters and requests are disjoint,
// and the owner is always a member.
func groupsValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"owner_id", "members", "join_requests", "max_members", "private", "name", "name_ci"},
			"properties": bson.M{
				"owner_id":      nonBlank,
				"members":       stringSet,
				"join_requests": stringSet,
				"max_members": bson.M{
					"bsonType": bson.A{"int", "long"},
					"minimum":  models.GroupSizeMin,
					"maximum":  models.GroupSizeMax,
				},
				"private":     bson.M{"bsonType": "bool"},
				"name":        nonBlank,
				"name_ci":     str,
				"department":  str,
				"course":      str,
				"course_code": str,
				"description": str,
				"topics":      str,
				"schedule":    str,
				"location":    str,
				"created_at":  date,
				"updated_at":  date,
			},
		},
		"$expr": bson.M{"$and": bson.A{
			bson.M{"$lte": bson.A{sizeOf("members"), "$max_members"}},
			disjoint("members", "join_requests"),
			bson.M{"$in": bson.A{"$owner_id", bson.M{"$ifNull": bson.A{"$members", bson.A{}}}}},
		}},
	}
}

// sessionsValidator enforces that each user holds at most one RSVP.
func sessionsValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "creator_id", "attendees", "maybes", "cannot_attend", "title"},
			"properties": bson.M{
				"group_id":      nonBlank,
				"creator_id":    nonBlank,
				"attendees":     stringSet,
				"maybes":        stringSet,
				"cannot_attend": stringSet,
				"title":         nonBlank,
				"topic":         str,
				"date":          str,
				"time":          str,
				"duration":      str,
				"agenda":        str,
				"created_at":    date,
			},
		},
		"$expr": bson.M{"$and": bson.A{
			disjoint("attendees", "maybes"),
			disjoint("attendees", "cannot_attend"),
			disjoint("maybes", "cannot_attend"),
		}},
	}
}
