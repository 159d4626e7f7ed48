package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

// Collection names
const (
	CollectionSummaries = "summaries"
	CollectionCampaigns = "campaigns"
	CollectionRatings   = "ratings"
)

// ratingLedger holds every response submitted for one campaign.
type ratingLedger struct {
	CampaignID  string                `bson:"campaignId"`
	Responses   []core.RatingResponse `bson:"responses"`
	DateUpdated time.Time             `bson:"dateUpdated"`
}

// Repository maps domain records onto a Store.
type Repository struct {
	store Store
	now   func() time.Time

	// serializes read-modify-write of rating ledgers within this process
	ratingsMu sync.Mutex
}

// NewRepository wraps store.
func NewRepository(store Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// SaveSummary stores a generated summary under its ID.
func (r *Repository) SaveSummary(ctx context.Context, s core.NarrativeSummary) error {
	return r.store.Merge(ctx, CollectionSummaries, s.ID, s)
}

// LatestSummary returns the most recently generated summary for leaderID.
func (r *Repository) LatestSummary(ctx context.Context, leaderID string) (core.NarrativeSummary, error) {
	var s core.NarrativeSummary
	err := r.store.Latest(ctx, CollectionSummaries, "dateGenerated", Filter{"leaderId": leaderID}, &s)
	return s, err
}

// SaveCampaign stores c under its ID, replacing earlier versions of its fields.
func (r *Repository) SaveCampaign(ctx context.Context, c core.Campaign) error {
	return r.store.Merge(ctx, CollectionCampaigns, c.ID, c)
}

// LatestCampaign returns the most recently created campaign for leaderID.
func (r *Repository) LatestCampaign(ctx context.Context, leaderID string) (core.Campaign, error) {
	var c core.Campaign
	err := r.store.Latest(ctx, CollectionCampaigns, "dateCreated", Filter{"leaderId": leaderID}, &c)
	return c, err
}

// GetCampaign returns the campaign with id.
func (r *Repository) GetCampaign(ctx context.Context, id string) (core.Campaign, error) {
	var c core.Campaign
	err := r.store.Latest(ctx, CollectionCampaigns, "dateUpdated", Filter{"campaignId": id}, &c)
	return c, err
}

// AddResponse appends a rating response to its campaign's ledger.
func (r *Repository) AddResponse(ctx context.Context, resp core.RatingResponse) error {
	r.ratingsMu.Lock()
	defer r.ratingsMu.Unlock()

	ledger, err := r.ledger(ctx, resp.CampaignID)
	if err != nil {
		return err
	}
	ledger.Responses = append(ledger.Responses, resp)
	ledger.DateUpdated = r.now().UTC()

	if err := r.store.Merge(ctx, CollectionRatings, resp.CampaignID, ledger); err != nil {
		return fmt.Errorf("failed to save rating response: %w", err)
	}
	return nil
}

// Responses returns every response submitted for campaignID, oldest first.
func (r *Repository) Responses(ctx context.Context, campaignID string) ([]core.RatingResponse, error) {
	ledger, err := r.ledger(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return ledger.Responses, nil
}

func (r *Repository) ledger(ctx context.Context, campaignID string) (ratingLedger, error) {
	var ledger ratingLedger
	err := r.store.Latest(ctx, CollectionRatings, "dateUpdated", Filter{"campaignId": campaignID}, &ledger)
	if errors.Is(err, ErrNotFound) {
		return ratingLedger{CampaignID: campaignID}, nil
	}
	if err != nil {
		return ratingLedger{}, fmt.Errorf("failed to load ratings: %w", err)
	}
	return ledger, nil
}
