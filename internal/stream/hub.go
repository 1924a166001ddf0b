package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans live stat frames out to websocket subscribers, keyed by workout
// id. With a Redis client attached, every frame travels through pub/sub and
// comes back via the relay, so subscribers on any instance see exactly one
// copy.
type Hub struct {
	redis       *redis.Client
	publishQ    chan frame
	subscribers map[string]map[*Subscriber]struct{}
	mu          sync.RWMutex
}

type frame struct {
	workoutID string
	payload   []byte
}

type Subscriber struct {
	WorkoutID string
	Frames    chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:       redisClient,
		subscribers: map[string]map[*Subscriber]struct{}{},
	}
	if redisClient != nil {
		h.publishQ = make(chan frame, 256)
		// subscribe before returning so frames published right after
		// construction are not lost
		pubsub := redisClient.PSubscribe(context.Background(), "workout:*:live")
		go h.relayRedis(pubsub)
		go h.publishRedis()
	}
	return h
}

func (h *Hub) Attach(workoutID string) *Subscriber {
	sub := &Subscriber{
		WorkoutID: workoutID,
		Frames:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[workoutID] == nil {
		h.subscribers[workoutID] = map[*Subscriber]struct{}{}
	}
	h.subscribers[workoutID][sub] = struct{}{}
	return sub
}

func (h *Hub) Detach(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subscribers[sub.WorkoutID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, sub.WorkoutID)
		}
	}
	close(sub.Frames)
}

// Broadcast hands one frame to every subscriber of the workout. Without
// Redis the delivery is direct. With Redis the frame is queued for pub/sub
// and the relay delivers it to local subscribers along with everyone else's,
// so nobody sees it twice; the enqueue never blocks the caller.
func (h *Hub) Broadcast(workoutID string, payload []byte) {
	if h.redis == nil {
		h.deliverLocal(workoutID, payload)
		return
	}

	select {
	case h.publishQ <- frame{workoutID: workoutID, payload: payload}:
	default:
		log.Printf("stream publish queue full, dropping frame for %s", workoutID)
	}
}

// deliverLocal keeps the read lock over the sends so Detach cannot close a
// Frames channel mid-delivery. The sends never block: slow subscribers are
// skipped, never waited on.
func (h *Hub) deliverLocal(workoutID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[workoutID] {
		select {
		case sub.Frames <- payload:
		default:
		}
	}
}

func (h *Hub) publishRedis() {
	ctx := context.Background()
	for f := range h.publishQ {
		err := h.redis.Publish(ctx, redisChannel(f.workoutID), f.payload).Err()
		if err != nil {
			// keep local subscribers fed while Redis is down
			log.Printf("redis publish: %v", err)
			h.deliverLocal(f.workoutID, f.payload)
		}
	}
}

func (h *Hub) relayRedis(pubsub *redis.PubSub) {
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliverLocal(workoutIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(workoutID string) string {
	return "workout:" + workoutID + ":live"
}

func workoutIDFromChannel(ch string) string {
	// workout:{id}:live
	const prefix = "workout:"
	const suffix = ":live"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
