package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Producer publishes a message body to RabbitMQ.
type Producer interface {
	Publish(body []byte) error
}

// Consumer listens to a RabbitMQ queue and handles its message stream.
// Returns the stream of deliveries and an error if the consumer could not be
// set up. On success the consumer's worker goroutine owns one slot of the
// given WaitGroup and releases it when the worker exits; on error the caller
// keeps the slot.
type Consumer interface {
	Consume(ctx context.Context, wg *sync.WaitGroup) (<-chan amqp.Delivery, error)
}

// ProducerFactory instantiates a Producer over an established RabbitMQ
// connection, channel and queue.
type ProducerFactory interface {
	CreateProducer(conn *amqp.Connection, ch *amqp.Channel, queue *amqp.Queue) (Producer, error)
}

// ConsumerFactory instantiates a Consumer over an established RabbitMQ
// connection, channel and queue.
type ConsumerFactory interface {
	CreateConsumer(conn *amqp.Connection, ch *amqp.Channel, queue *amqp.Queue) (Consumer, error)
}

// Queue holds the producers and consumers attached to one declared queue.
type Queue struct {
	Producers []Producer
	Consumers []Consumer
}

// connect dials RabbitMQ, opens a channel in confirm mode, and installs a
// closure watcher that brings the process down if the connection drops.
func connect(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	if err = ch.Confirm(false); err != nil {
		return nil, nil, err
	}

	notifyClose := make(chan *amqp.Error)
	conn.NotifyClose(notifyClose)

	go func() {
		err := <-notifyClose
		if err != nil {
			log.Fatalf("RabbitMQ connection closed: %v", err)
		}
	}()

	return conn, ch, nil
}

// InitQueue connects to RabbitMQ at the given URL, declares a durable queue
// with the given name, and builds the producers and consumers the factories
// describe. Any failure here is fatal: the process cannot do useful work
// without its queue.
func InitQueue(url string, queueName string, prodFactories []ProducerFactory, consFactories []ConsumerFactory) *Queue {
	conn, ch, err := connect(url)
	if err != nil {
		log.Fatalf("error connecting to RabbitMQ: %v", err)
	}

	queue, err := ch.QueueDeclare(
		queueName,
		true,  // Durable
		false, // Delete when unused
		false, // Exclusive
		false, // No-wait
		nil,   // Arguments
	)
	if err != nil {
		log.Fatalf("error declaring queue: %v", err)
	}

	var producers []Producer
	var consumers []Consumer

	for _, prodFactory := range prodFactories {
		producer, err := prodFactory.CreateProducer(conn, ch, &queue)
		if err != nil {
			log.Fatalf("error creating producer: %v", err)
		}
		producers = append(producers, producer)
	}

	for _, consFactory := range consFactories {
		consumer, err := consFactory.CreateConsumer(conn, ch, &queue)
		if err != nil {
			log.Fatalf("error creating consumer: %v", err)
		}
		consumers = append(consumers, consumer)
	}

	return &Queue{
		Producers: producers,
		Consumers: consumers,
	}
}

// StartConsumers starts every consumer; the context controls the lifetime of
// their worker goroutines. An optional duration wraps the context with a
// timeout so the consumers stop on their own after that long. The returned
// cancel function stops the consumers early, and the WaitGroup waits for
// every worker to exit.
func (q *Queue) StartConsumers(ctx context.Context, runFor ...time.Duration) (context.CancelFunc, *sync.WaitGroup, error) {
	var cancel context.CancelFunc
	if len(runFor) > 0 {
		ctx, cancel = context.WithTimeout(ctx, runFor[0])
	}

	var wg sync.WaitGroup

	for _, consumer := range q.Consumers {
		wg.Add(1)

		if _, err := consumer.Consume(ctx, &wg); err != nil {
			wg.Done()
			log.Printf("Error starting consumer: %v", err)
		}
	}

	return cancel, &wg, nil
}
