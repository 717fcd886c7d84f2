package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/streadway/amqp"

	"github.com/mindhaven/mindhaven/reminders"
	"github.com/mindhaven/mindhaven/storage"
)

// globalCount drives the round robin assignment of producers to reminder
// messages.
var globalCount int

// ReminderProducerFactory creates ReminderProducer instances.
type ReminderProducerFactory struct{}

// ReminderConsumerFactory creates ReminderConsumer instances. The Cache is
// the dedupe store consulted before a reminder is delivered.
type ReminderConsumerFactory struct {
	Cache storage.CacheInterface
}

// ReminderProducer publishes reminder messages onto the queue.
type ReminderProducer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   *amqp.Queue
}

// ReminderConsumer reads reminder messages off the queue, skips the ones the
// dedupe cache has already seen, and delivers the rest.
type ReminderConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   *amqp.Queue
	cache   storage.CacheInterface
}

// CreateProducer instantiates a ReminderProducer over the given connection,
// channel and queue. The error is always nil for now.
func (f *ReminderProducerFactory) CreateProducer(conn *amqp.Connection, ch *amqp.Channel, queue *amqp.Queue) (Producer, error) {
	return &ReminderProducer{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

// CreateConsumer instantiates a ReminderConsumer over the given connection,
// channel and queue, wired to the factory's dedupe cache. The error is
// always nil for now.
func (f *ReminderConsumerFactory) CreateConsumer(conn *amqp.Connection, ch *amqp.Channel, queue *amqp.Queue) (Consumer, error) {
	return &ReminderConsumer{
		conn:    conn,
		channel: ch,
		queue:   queue,
		cache:   f.Cache,
	}, nil
}

// Publish sends one serialized reminder to the queue.
func (rp *ReminderProducer) Publish(body []byte) error {
	err := rp.channel.Publish(
		"",            // exchange
		rp.queue.Name, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	return nil
}

// Consume sets up a consumer on the queue and launches a worker that reads
// reminders off it. Each reminder is checked against the dedupe cache under
// its id; one already delivered within the dedupe window is acked and
// dropped, so re-deriving the same reminder every minute nags the user only
// once a day. Transient failures nack with requeue. The worker holds one
// slot of the given WaitGroup until it exits.
func (rc *ReminderConsumer) Consume(ctx context.Context, wg *sync.WaitGroup) (<-chan amqp.Delivery, error) {
	msgs, err := rc.channel.Consume(
		rc.queue.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	go func() {
		defer wg.Done()
		for {
			select {
			case d, ok := <-msgs:

				if !ok {
					return
				}

				reminder := &reminders.Reminder{}
				if err := json.Unmarshal(d.Body, reminder); err != nil {
					log.Printf("failed to unmarshal reminder: %v", err)
					d.Nack(false, true)
					continue
				}

				delivered, err := rc.cache.Get(ctx, "reminder_"+reminder.ID)
				if err != nil {
					// A cache miss is the normal case; anything else requeues.
					if err.Error() != "key does not exist" {
						log.Printf("error checking cache: %v", err)
						d.Nack(false, true)
						continue
					}
				}

				if delivered != nil {
					d.Ack(false)
					continue
				}

				deliver(reminder)
				d.Ack(false)
				if err := rc.cache.Set(ctx, "reminder_"+reminder.ID, true); err != nil {
					log.Printf("failed to set key in cache: %v", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	return msgs, nil
}

// deliver surfaces one reminder to the user. Delivery is a log line for now;
// the dedupe and ack semantics around it do not depend on the channel.
func deliver(r *reminders.Reminder) {
	log.Printf("[reminder] %s: %s", r.Title, r.Message)
}

// BuildReminderQueue initializes the reminder queue with the requested
// number of producers and consumers, all sharing the given dedupe cache.
func BuildReminderQueue(rabbitMQURL string, numProducers int, numConsumers int, reminderCache storage.CacheInterface) *Queue {

	prodFactories := make([]ProducerFactory, numProducers)
	for i := 0; i < numProducers; i++ {
		prodFactories[i] = &ReminderProducerFactory{}
	}

	consFactories := make([]ConsumerFactory, numConsumers)
	for i := 0; i < numConsumers; i++ {
		consFactories[i] = &ReminderConsumerFactory{Cache: reminderCache}
	}

	return InitQueue(rabbitMQURL, "reminderQueue", prodFactories, consFactories)
}

// InitReminderCache connects the dedupe cache at the given URL. A process
// that cannot reach its cache would nag the user on every derivation pass,
// so failure here is fatal.
func InitReminderCache(url string) storage.CacheInterface {
	c, err := storage.NewCache(url)
	if err != nil {
		log.Fatalf("Error connecting to cache: %v", err)
	}
	return c
}

// ProcessReminder serializes one reminder and publishes it through one of
// the queue's producers, chosen round robin.
func ProcessReminder(reminder *reminders.Reminder, reminderQueue *Queue) error {

	body, err := json.Marshal(reminder)
	if err != nil {
		return errors.New("failed to marshal reminder: " + err.Error())
	}

	producerCount := len(reminderQueue.Producers)
	if producerCount == 0 {
		return errors.New("no producers available")
	}

	producer := reminderQueue.Producers[globalCount%producerCount]
	globalCount++

	if err := producer.Publish(body); err != nil {
		return errors.New("failed to publish reminder: " + err.Error())
	}

	return nil
}
