package provider

import (
	"context"
	"fmt"

	"github.com/slotwatch/slotwatch/internal/config"
	"github.com/slotwatch/slotwatch/internal/domain"
)

// Provider yields the set of currently free items for one watched service.
// Exactly one poll worker owns each Provider instance; implementations only
// need to be safe for that single caller.
type Provider interface {
	// Fetch observes the current availability state.
	Fetch(ctx context.Context) (domain.Snapshot, error)

	// Source identifies where the data comes from, for reports and logs.
	Source() string
}

// New builds the provider described by a service entry. The kind set is
// closed; config validation rejects unknown kinds before this runs, so the
// default branch only fires on a construction bug.
func New(svc config.Service) (Provider, error) {
	switch svc.Provider {
	case config.ProviderBooked4us:
		return NewBooked4us(*svc.Booked4us), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", svc.Provider)
	}
}
