package worker

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// Sweepable is an in-process store with lazily expired entries.
type Sweepable interface {
	Sweep() int
}

type Config struct {
	Interval time.Duration
}

// Sweeper periodically drops expired entries from in-process stores such as
// the memory revocation denylist and the user cache.
type Sweeper struct {
	cfg     Config
	targets map[string]Sweepable
	log     *slog.Logger
}

func NewSweeper(cfg Config, targets map[string]Sweepable, log *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{cfg: cfg, targets: targets, log: log}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper received shutdown signal")
			return nil

		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce runs one pass over every target and returns the total removed.
func (s *Sweeper) SweepOnce() int {
	names := make([]string, 0, len(s.targets))
	for name := range s.targets {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		n := s.targets[name].Sweep()
		if n > 0 {
			s.log.Debug("sweeper.swept", "target", name, "removed", n)
		}
		total += n
	}
	return total
}
