package mongodb

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

// searchFields are matched by free-text queries.
var searchFields = []string{"name", "serialNumber", "location", "assignedTo", "assetType", "status"}

// stateFilter matches active documents (deletedAt null or missing) or trashed ones.
func stateFilter(state models.DeletionState) interface{} {
	if state == models.Trashed {
		return bson.M{"$ne": nil}
	}
	return nil
}

// listFilter builds the find/count filter for a listing. The query text is
// escaped so it matches literally, case-insensitively.
func listFilter(opts *models.ListOptions) bson.M {
	filter := bson.M{
		"createdByEmail": opts.Owner,
		"deletedAt":      stateFilter(opts.State),
	}

	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	if opts.Query != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Query), Options: "i"}
		or := make(bson.A, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: rx})
		}
		filter["$or"] = or
	}

	return filter
}

// listSort orders by the requested key, tie-broken by _id ascending so that
// skip/limit pagination is stable.
func listSort(opts *models.ListOptions) bson.D {
	dir := -1
	if opts.Order == models.SortAsc {
		dir = 1
	}
	key := "createdAt"
	if opts.Sort == models.SortByName {
		key = "name"
	}
	return bson.D{{Key: key, Value: dir}, {Key: "_id", Value: 1}}
}

// scopedFilter targets the given ids, owner and deletion state.
func scopedFilter(ids []primitive.ObjectID, owner string, state models.DeletionState) bson.M {
	filter := bson.M{
		"createdByEmail": owner,
		"deletedAt":      stateFilter(state),
	}
	if len(ids) == 1 {
		filter["_id"] = ids[0]
	} else {
		filter["_id"] = bson.M{"$in": ids}
	}
	return filter
}

// objectIDs converts hex ids, dropping any that are malformed. A malformed id
// cannot match a document, so dropping it is the same as skipping it.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}

// patchUpdate turns a patch into $set/$unset operators. updatedAt is always set.
func patchUpdate(patch models.AssetPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}

	for field := range patch {
		if field.IsDate() {
			t, _ := patch.Date(field)
			if t == nil {
				unset[string(field)] = ""
			} else {
				set[string(field)] = t.UTC()
			}
			continue
		}
		s, _ := patch.Text(field)
		if s == nil {
			unset[string(field)] = ""
		} else {
			set[string(field)] = *s
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
