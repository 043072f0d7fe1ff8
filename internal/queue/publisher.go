package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cineverse/internal/booking"
)

// BookingQueue is the durable queue confirmed bookings are sent to.
const BookingQueue = "booking.confirmed"

// Publisher sends booking events to RabbitMQ.  It dials per publish so a
// broker restart never leaves it holding a dead connection.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// BookingConfirmed publishes b.  Errors are logged and returned so the
// caller can choose to ignore them.
func (p *Publisher) BookingConfirmed(ctx context.Context, b booking.Booking) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Warnf("[rabbitmq] dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warnf("[rabbitmq] channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		log.Warnf("[rabbitmq] queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(NewBookingConfirmedEvent(b))
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    b.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", BookingQueue, false, false, pub); err != nil {
		log.Warnf("[rabbitmq] publish failed: %v", err)
		return err
	}
	return nil
}

// Discard drops every event.  It stands in for Publisher when no broker is
// configured.
type Discard struct{}

func (Discard) BookingConfirmed(context.Context, booking.Booking) error { return nil }
