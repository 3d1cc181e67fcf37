package boot

import (
	"context"
	"log"
	"ticketbari/src/common"
	"ticketbari/src/config"
	"ticketbari/src/controllers"
	"ticketbari/src/db"
	"ticketbari/src/lib"
	"ticketbari/src/models"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Ticket{},
		&models.Booking{},
		&models.Transaction{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler registers the housekeeping jobs and starts the scheduler.
func InitScheduler(ctrl *controllers.Controller) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	interval := config.GetEnvDuration("RELEASE_ADS_INTERVAL", 5*time.Minute)
	if _, err := lib.CreateRecurringJob("release-departed-advertisements", interval, func() {
		released, err := ctrl.ReleaseDepartedAdvertisements(context.Background())
		if err != nil {
			log.Printf("Error releasing departed advertisements: %s\n", err.Error())
			return
		}
		if released > 0 {
			log.Printf("Released %d departed advertisements\n", released)
		}
	}); err != nil {
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("An error has occurred while stopping Scheduler: %s\n", err.Error())
	}
}

// InitBroker creates the booking events topic and starts the mail consumer.
func InitBroker(ctx context.Context) {
	if !lib.KafkaEnabled() {
		log.Println("KAFKA_BROKER not set, booking events disabled")
		return
	}
	if _, err := lib.KafkaCreateTopics(lib.BookingEventsTopic); err != nil {
		log.Printf("Error creating topic %s: %s\n", lib.BookingEventsTopic, err.Error())
	}
	if err := common.BookingEventsConsumer(ctx); err != nil {
		log.Printf("Error starting booking events consumer: %s\n", err.Error())
	}
}
