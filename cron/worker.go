package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/outrigger999/rental-recon/config"
	"github.com/outrigger999/rental-recon/services/backup"

	"github.com/hibiken/asynq"
)

const TypeBackupRun = "backup:run"

// InitBackupWorker runs the async worker and the periodic backup schedule in
// the background.
func InitBackupWorker(svc *backup.Service) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBackupRun, handleBackupTask(svc))

	// Start async worker with retry logic
	go func() {
		log.Println("[BackupWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[BackupWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[BackupWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()

	// Enqueue the backup task on the configured interval.
	interval := time.Duration(svc.GetConfig().BackupInterval) * time.Second
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register(fmt.Sprintf("@every %s", interval), asynq.NewTask(TypeBackupRun, nil)); err != nil {
		log.Printf("[BackupWorker] ❌ Failed to register backup schedule: %v", err)
		return
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("[BackupWorker] ❌ Scheduler stopped: %v", err)
		}
	}()
}

func handleBackupTask(svc *backup.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		cfg := svc.GetConfig()
		if !cfg.AutoBackup {
			log.Println("[BackupHandler] ⏭ Auto backup disabled, skipping")
			return nil
		}

		name, err := svc.Create(ctx)
		if err != nil {
			log.Printf("[BackupHandler] ❌ Backup failed: %v", err)
			return err
		}
		log.Printf("[BackupHandler] 💾 Backup created: %s", name)
		return nil
	}
}
