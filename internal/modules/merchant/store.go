// README: Firestore source for merchant configuration (merchants/{id} and its sub-collections).
package merchant

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const merchantsCollection = "merchants"

// Source loads the raw configuration of one merchant.
type Source interface {
	Load(ctx context.Context, merchantID string) (RawConfig, error)
}

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Load(ctx context.Context, merchantID string) (RawConfig, error) {
	ref := s.client.Collection(merchantsCollection).Doc(merchantID)
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return RawConfig{}, ErrNotFound
	}
	if err != nil {
		return RawConfig{}, fmt.Errorf("get merchant %s: %w", merchantID, err)
	}

	raw := RawConfig{MerchantID: merchantID}
	if err := snap.DataTo(&raw.Merchant); err != nil {
		return RawConfig{}, fmt.Errorf("%w: merchant %s: %v", ErrInvalidDocument, merchantID, err)
	}

	if raw.Vehicles, err = readAll(ctx, ref.Collection("vehicles"), func(d *VehicleDoc, id string) int {
		d.ID = id
		return d.Position
	}); err != nil {
		return RawConfig{}, err
	}
	if raw.Zones, err = readAll(ctx, ref.Collection("zones"), func(d *ZoneDoc, id string) int {
		d.ID = id
		return d.Position
	}); err != nil {
		return RawConfig{}, err
	}
	if raw.Packages, err = readAll(ctx, ref.Collection("packages"), func(d *PackageDoc, id string) int {
		d.ID = id
		return d.Position
	}); err != nil {
		return RawConfig{}, err
	}
	if raw.Surcharges, err = readAll(ctx, ref.Collection("surcharges"), func(d *SurchargeDoc, id string) int {
		d.ID = id
		return d.Position
	}); err != nil {
		return RawConfig{}, err
	}
	return raw, nil
}

// readAll decodes every document of col. Documents come back ordered by ID;
// the stable sort on position keeps that order for ties.
func readAll[T any](ctx context.Context, col *firestore.CollectionRef, bind func(*T, string) int) ([]T, error) {
	type positioned struct {
		doc T
		pos int
	}

	iter := col.Documents(ctx)
	defer iter.Stop()

	var rows []positioned
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", col.Path, err)
		}
		var doc T
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, snap.Ref.Path, err)
		}
		rows = append(rows, positioned{doc: doc, pos: bind(&doc, snap.Ref.ID)})
	}

	slices.SortStableFunc(rows, func(a, b positioned) int { return cmp.Compare(a.pos, b.pos) })
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.doc
	}
	return out, nil
}
