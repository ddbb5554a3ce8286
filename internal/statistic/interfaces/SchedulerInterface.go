package interfaces

import (
	"context"
	"time"
)

type SchedulerInterface interface {
	Init()
	Stop()
	RunOnce(ctx context.Context) error
	GenerateAndArchive(ctx context.Context, date time.Time) error
}
