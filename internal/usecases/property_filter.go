package usecases

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
)

// Bucket is a named predicate over records
type Bucket string

const (
	BucketAll       Bucket = "all"
	BucketValidated Bucket = "validated" // approved and not yet sold
	BucketPending   Bucket = "pending"
	BucketRejected  Bucket = "rejected"
	BucketSold      Bucket = "sold"
	BucketMine      Bucket = "mine"
	BucketOthers    Bucket = "others"
)

// ParseBucket accepts a bucket name case-insensitively; empty means all
func ParseBucket(value string) (Bucket, error) {
	b := Bucket(strings.ToLower(strings.TrimSpace(value)))
	switch b {
	case "":
		return BucketAll, nil
	case BucketAll, BucketValidated, BucketPending, BucketRejected, BucketSold, BucketMine, BucketOthers:
		return b, nil
	}
	return "", domainerrors.Invalid("filter", "unknown filter "+value)
}

// Matches reports whether p falls into the bucket for the given viewer.
// Ownership buckets never match without a viewer.
func (b Bucket) Matches(p *entities.PropertyRecord, viewer common.Address) bool {
	switch b {
	case BucketAll:
		return true
	case BucketValidated:
		return p.Status == entities.PropertyStatusApproved
	case BucketPending:
		return p.Status == entities.PropertyStatusPending
	case BucketRejected:
		return p.Status == entities.PropertyStatusRejected
	case BucketSold:
		return p.Status == entities.PropertyStatusSold
	case BucketMine:
		return p.OwnedBy(viewer)
	case BucketOthers:
		return viewer != (common.Address{}) && !p.OwnedBy(viewer)
	}
	return false
}

// MatchesQuery is a case-insensitive substring match over title, location
// and description. Only the empty query matches everything; whitespace is
// matched literally.
func MatchesQuery(p *entities.PropertyRecord, query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Location), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// FilterProperties keeps the records in both the bucket and the query,
// preserving input order.
func FilterProperties(records []*entities.PropertyRecord, bucket Bucket, query string, viewer common.Address) []*entities.PropertyRecord {
	out := make([]*entities.PropertyRecord, 0, len(records))
	for _, p := range records {
		if bucket.Matches(p, viewer) && MatchesQuery(p, query) {
			out = append(out, p)
		}
	}
	return out
}
