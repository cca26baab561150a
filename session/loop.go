package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/faction-gol/model"
	"github.com/sheikhrachel/faction-gol/pattern"
)

// ErrStopped is returned by Do once Run has returned
var ErrStopped = errors.New("session loop stopped")

// Observer receives every tick's report and a snapshot of the new
// generation. The snapshot is recycled once the observer returns.
type Observer func(Report, *model.Grid)

// Run drives the session at the configured frame rate until ctx is done or
// MaxGenerations is reached. Ticks and functions posted through Do execute on
// this goroutine one at a time, so a placement never overlaps a step. Run may
// only be called once per session.
func (s *Session) Run(ctx context.Context, observe Observer) error {
	defer close(s.stopped)

	ticker := time.NewTicker(s.cfg.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.events:
			fn(s)
		case <-ticker.C:
			report, err := s.Tick()
			if err != nil {
				return errors.Wrap(err, "[Session.Run]")
			}
			if observe != nil {
				snap := s.Snapshot()
				observe(report, snap)
				s.Release(snap)
			}
			if s.cfg.MaxGenerations > 0 && report.Generation >= s.cfg.MaxGenerations {
				return nil
			}
		}
	}
}

// Do runs fn on the Run goroutine and waits for it to finish
func (s *Session) Do(ctx context.Context, fn func(*Session)) error {
	done := make(chan struct{})
	task := func(s *Session) {
		defer close(done)
		fn(s)
	}

	select {
	case s.events <- task:
	case <-s.stopped:
		return errors.Wrap(ErrStopped, "[Session.Do]")
	case <-ctx.Done():
		return ctx.Err()
	}

	// Run executes a received task before selecting again.
	<-done
	return nil
}

// Submit places the selected pattern at origin through the Run loop
func (s *Session) Submit(ctx context.Context, origin model.Coord) (pattern.Placement, error) {
	var (
		res      pattern.Placement
		placeErr error
	)
	if err := s.Do(ctx, func(s *Session) {
		res, placeErr = s.Place(origin)
	}); err != nil {
		return res, err
	}
	return res, placeErr
}
