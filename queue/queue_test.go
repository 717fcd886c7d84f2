package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"

	"github.com/mindhaven/mindhaven/reminders"
)

// fakePublisher records every body handed to it.
type fakePublisher struct {
	bodies [][]byte
	err    error
}

func (f *fakePublisher) Publish(body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

func TestProcessReminderRoundRobin(t *testing.T) {
	globalCount = 0
	p1 := &fakePublisher{}
	p2 := &fakePublisher{}
	q := &Queue{Producers: []Producer{p1, p2}}

	messages := []*reminders.Reminder{
		{ID: "r1", Type: reminders.TypeGoal, Title: "Read more", Message: "due in 2 days"},
		{ID: "r2", Type: reminders.TypeHabit, Title: "Morning walk", Message: "not done yet today"},
		{ID: "r3", Type: reminders.TypeMindfulness, Title: "Morning Clarity", Message: "time for your Meditation practice"},
		{ID: "r4", Type: reminders.TypeGoalOverdue, Title: "File taxes", Message: "was due 1 day ago"},
	}

	for _, r := range messages {
		err := ProcessReminder(r, q)
		assert.NoError(t, err)
	}

	assert.Equal(t, 2, len(p1.bodies), "Messages alternate between producers")
	assert.Equal(t, 2, len(p2.bodies))

	var decoded reminders.Reminder
	err := json.Unmarshal(p1.bodies[0], &decoded)
	assert.NoError(t, err)
	assert.Equal(t, "r1", decoded.ID)
	assert.Equal(t, "due in 2 days", decoded.Message)
}

// fakeConsumer spawns a worker that lingers past cancellation, so a Wait
// that returns before drained is set would expose a premature Done.
type fakeConsumer struct {
	drained bool
	err     error
}

func (f *fakeConsumer) Consume(ctx context.Context, wg *sync.WaitGroup) (<-chan amqp.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	msgs := make(chan amqp.Delivery)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		f.drained = true
	}()
	return msgs, nil
}

func TestStartConsumersWaitsForWorkers(t *testing.T) {
	c1 := &fakeConsumer{}
	c2 := &fakeConsumer{}
	q := &Queue{Consumers: []Consumer{c1, c2}}

	cancel, wg, err := q.StartConsumers(context.Background(), 10*time.Millisecond)
	assert.NoError(t, err)
	defer cancel()

	wg.Wait()
	assert.True(t, c1.drained, "Wait returns only after the worker has exited")
	assert.True(t, c2.drained)
}

func TestStartConsumersFailedSetupReleasesSlot(t *testing.T) {
	q := &Queue{Consumers: []Consumer{&fakeConsumer{err: errors.New("channel closed")}}}

	_, wg, err := q.StartConsumers(context.Background())
	assert.NoError(t, err)

	// A consumer that never started holds no slot, so Wait must not block.
	wg.Wait()
}

func TestProcessReminderNoProducers(t *testing.T) {
	q := &Queue{}
	err := ProcessReminder(&reminders.Reminder{ID: "r1"}, q)
	assert.Error(t, err)
}

func TestProcessReminderPublishError(t *testing.T) {
	globalCount = 0
	q := &Queue{Producers: []Producer{&fakePublisher{err: errors.New("channel closed")}}}
	err := ProcessReminder(&reminders.Reminder{ID: "r1"}, q)
	assert.Error(t, err)
}
