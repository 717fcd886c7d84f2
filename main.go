package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mindhaven/mindhaven/auth"
	"github.com/mindhaven/mindhaven/cache"
	"github.com/mindhaven/mindhaven/cmd"
	"github.com/mindhaven/mindhaven/queue"
	"github.com/mindhaven/mindhaven/reminders"
	"github.com/mindhaven/mindhaven/session"
	"github.com/mindhaven/mindhaven/storage"
)

const keyringService = "MindHaven"

// runReminderLoop re-derives the due reminders once a minute and publishes
// them onto the queue. The consumer side dedupes, so publishing the same
// reminder every pass is harmless.
func runReminderLoop(ctx context.Context, data *cache.DataCache, reminderQueue *queue.Queue) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due := reminders.Build(time.Now(), data.Goals(), data.Habits(), data.MindfulnessActivities())
			for i := range due {
				if err := queue.ProcessReminder(&due[i], reminderQueue); err != nil {
					log.Printf("error publishing reminder: %v", err)
				}
			}
		}
	}
}

func main() {
	// Load the .env file
	err := godotenv.Load()
	if err != nil {
		fmt.Println("Error loading .env file")
	}

	// Read the environment variables
	signingKey := os.Getenv("JWT_SIGNING_KEY")
	authToken := os.Getenv("AUTH_TOKEN")
	authTokenRefresh := os.Getenv("AUTH_TOKEN_REFRESH")
	dbURI := os.Getenv("MONGODB_URI")
	dbName := os.Getenv("DB_NAME")
	redisURL := os.Getenv("REDIS_URL")
	rabbitMQURL := os.Getenv("RABBITMQ_URL")

	// Set default values if the environment variables are empty
	if signingKey == "" {
		signingKey = "your_default_signing_key"
	}
	if authToken == "" {
		authToken = "your_default_auth_token"
	}
	if authTokenRefresh == "" {
		authTokenRefresh = "your_default_auth_token_refresh"
	}
	if dbName == "" {
		dbName = "mindhaven"
	}

	ctx := context.Background()

	store, err := storage.NewStorage(dbName, dbURI)
	if err != nil {
		log.Fatalf("error initializing storage: %v", err)
	}
	defer store.Disconnect()

	authService := auth.NewAuthService(store, signingKey, keyringService, authToken, authTokenRefresh)
	data := cache.NewDataCache(store)

	bootstrap := session.NewBootstrap(authService, store)
	bootstrap.OnUserChange(func(userID string) {
		data.SetUser(ctx, userID)
	})
	bootstrap.Start(ctx)
	defer bootstrap.Stop()

	ticker := cache.NewTicker(data)
	ticker.Start(ctx)
	defer ticker.Stop()

	// The reminder pipeline is optional: without a broker the app still runs,
	// it just never nags.
	if rabbitMQURL != "" && redisURL != "" {
		reminderCache := queue.InitReminderCache(redisURL)
		reminderQueue := queue.BuildReminderQueue(rabbitMQURL, 2, 2, reminderCache)
		if _, _, err := reminderQueue.StartConsumers(ctx); err != nil {
			log.Printf("error starting reminder consumers: %v", err)
		}
		go runReminderLoop(ctx, data, reminderQueue)
	}

	cmd.InitCommands(bootstrap, data)
	cmd.Execute()
}
