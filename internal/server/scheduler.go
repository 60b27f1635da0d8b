package server

import (
	"context"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/schedule"
)

// Scheduler defines the minimal schedule behavior needed by the server.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status() schedule.Status
}
