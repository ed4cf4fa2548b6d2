package insight

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const perUserTimeout = 30 * time.Second

type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// GenerateForAllUsers runs one generation per user. A failure for one user is logged
// and does not stop the others; the number of failed users is returned.
func GenerateForAllUsers(ctx context.Context, users UserLister, generator Service) (int, error) {
	userIDs, err := users.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, userID := range userIDs {
		userCtx, cancel := context.WithTimeout(ctx, perUserTimeout)
		report, err := generator.Generate(userCtx, userID)
		cancel()
		if err != nil {
			failed++
			log.Printf("[Scheduler] insight generation failed for user %s: %v", userID, err)
			continue
		}
		if report.Created > 0 || report.Pruned > 0 {
			log.Printf("[Scheduler] user %s: %d insights created, %d pruned", userID, report.Created, report.Pruned)
		}
	}
	return failed, nil
}

// StartScheduler registers the insight job on a new cron instance and starts it.
// The caller stops the returned cron on shutdown.
func StartScheduler(spec string, users UserLister, generator Service) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		start := time.Now()
		failed, err := GenerateForAllUsers(context.Background(), users, generator)
		if err != nil {
			log.Printf("[Scheduler] error listing users for insight generation: %v", err)
			return
		}
		log.Printf("[Scheduler] insight generation finished in %v (%d failures)", time.Since(start), failed)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
