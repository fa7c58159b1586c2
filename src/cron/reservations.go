package cron

import (
	"log"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/robfig/cron/v3"
)

// StartReservationCron runs the reservation sweep every five minutes.
// The sweep is a correctness backstop, not an optimization: expiry and
// promotion are wall-clock driven, and without traffic nothing else would
// run them. Overlapping runs are safe because normalization is idempotent.
func StartReservationCron(service *services.ReservationService) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("*/5 * * * *", func() {
		log.Println("Reservation cron running...")
		if err := service.NormalizeAllBooks(); err != nil {
			log.Printf("Reservation cron error: %v\n", err)
		}
	})
	if err != nil {
		log.Fatalf("Error scheduling reservation cron: %v\n", err)
	}

	c.Start()
	return c
}
