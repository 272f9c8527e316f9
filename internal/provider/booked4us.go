package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/slotwatch/slotwatch/internal/config"
	"github.com/slotwatch/slotwatch/internal/domain"
)

// Booked4us watches a booked4us appointment backend. One overview request
// lists the known calendars, then one probe per calendar asks for its first
// free slot; a calendar with a non-null first free slot counts as free.
type Booked4us struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewBooked4us builds a provider for one backend. A probe rate of 0 leaves
// the probes unpaced; a timeout of 0 leaves requests unbounded.
func NewBooked4us(cfg config.Booked4usSettings) *Booked4us {
	limit := rate.Inf
	burst := 0
	if cfg.ProbeRate > 0 {
		limit = rate.Limit(cfg.ProbeRate)
		burst = cfg.ProbeRate
	}
	return &Booked4us{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout.Duration()},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// Wire shapes. Pointer fields distinguish absent keys from zero values so a
// shape mismatch surfaces as a malformed-response error instead of a silent
// zero ID.
type calendarsResponse struct {
	Data []calendarEntry `json:"Data"`
}

type calendarEntry struct {
	ID   *uint32 `json:"Id"`
	Name *string `json:"Name"`
}

type firstFreeSlotResponse struct {
	Data json.RawMessage `json:"Data"`
}

// Fetch lists all calendars, probes each one for availability, and returns
// the free subset.
func (b *Booked4us) Fetch(ctx context.Context) (domain.Snapshot, error) {
	calendars, err := b.fetchCalendars(ctx)
	if err != nil {
		return nil, err
	}

	snap := make(domain.Snapshot, len(calendars))
	for _, cal := range calendars {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindTransport, Source: b.baseURL, Cause: err}
		}
		free, err := b.hasFreeSlot(ctx, *cal.ID)
		if err != nil {
			return nil, err
		}
		if free {
			snap[*cal.ID] = domain.Slot{ID: *cal.ID, Name: *cal.Name}
		}
	}
	return snap, nil
}

func (b *Booked4us) Source() string {
	return b.baseURL
}

func (b *Booked4us) fetchCalendars(ctx context.Context) ([]calendarEntry, error) {
	url := b.baseURL + "/rest-v2/api/Calendars/WithDetails"

	var resp calendarsResponse
	if err := b.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &Error{Kind: KindMalformed, Source: url, Cause: errors.New("missing Data field")}
	}
	for i, cal := range resp.Data {
		if cal.ID == nil || cal.Name == nil {
			return nil, &Error{Kind: KindMalformed, Source: url, Cause: fmt.Errorf("calendar at index %d is missing Id or Name", i)}
		}
	}
	return resp.Data, nil
}

func (b *Booked4us) hasFreeSlot(ctx context.Context, id uint32) (bool, error) {
	url := fmt.Sprintf("%s/rest-v2/api/Calendars/%d/FirstFreeSlot", b.baseURL, id)

	var resp firstFreeSlotResponse
	if err := b.getJSON(ctx, url, &resp); err != nil {
		return false, err
	}
	return len(resp.Data) > 0 && string(resp.Data) != "null", nil
}

func (b *Booked4us) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{Kind: KindTransport, Source: url, Cause: err}
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Source: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &Error{Kind: KindTransport, Source: url, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindMalformed, Source: url, Cause: err}
	}
	return nil
}

// compile-time check that Booked4us implements Provider
var _ Provider = (*Booked4us)(nil)
