package topics

import (
	"sort"
	"sync"
	"time"

	"github.com/open-teleop/turtlebridge/pkg/config"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
)

// Direction of a topic relative to this process
type Direction string

const (
	Inbound  Direction = "INBOUND"
	Outbound Direction = "OUTBOUND"
)

// TopicInfo holds metadata and counters for a topic
type TopicInfo struct {
	Topic        string    `json:"topic"`
	MessageType  string    `json:"message_type"`
	Direction    Direction `json:"direction"`
	StatCount    int64     `json:"count"`
	ErrorCount   int64     `json:"errors"`
	LastReceived int64     `json:"last_received"` // unix nanoseconds, 0 if never
}

// Registry maintains information about the bridge topics. The same topic
// name may be registered in both directions.
type Registry struct {
	logger customlog.Logger
	topics map[key]*TopicInfo
	mu     sync.RWMutex
	now    func() time.Time
}

type key struct {
	topic     string
	direction Direction
}

// NewRegistry creates a new topic registry
func NewRegistry(logger customlog.Logger) *Registry {
	return &Registry{
		logger: logger,
		topics: make(map[key]*TopicInfo),
		now:    time.Now,
	}
}

// LoadFromConfig registers the configured topics
func (r *Registry) LoadFromConfig(cfg config.TopicsConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.topics = make(map[key]*TopicInfo)
	r.register(cfg.Log, "rcl_interfaces/msg/Log", Inbound)
	r.register(cfg.RemoteCommand, "geometry_msgs/msg/Twist", Inbound)
	r.register(cfg.LocalCommand, "geometry_msgs/msg/Twist", Outbound)

	r.logger.Infof("Loaded %d topics into registry", len(r.topics))
}

func (r *Registry) register(topic, messageType string, dir Direction) {
	r.topics[key{topic, dir}] = &TopicInfo{
		Topic:       topic,
		MessageType: messageType,
		Direction:   dir,
	}
}

func (r *Registry) entry(topic string, dir Direction) *TopicInfo {
	info, exists := r.topics[key{topic, dir}]
	if !exists {
		info = &TopicInfo{Topic: topic, Direction: dir}
		r.topics[key{topic, dir}] = info
	}
	return info
}

// RecordMessage counts a message seen on topic
func (r *Registry) RecordMessage(topic string, dir Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := r.entry(topic, dir)
	info.StatCount++
	info.LastReceived = r.now().UnixNano()
}

// RecordError counts a message on topic that could not be handled
func (r *Registry) RecordError(topic string, dir Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entry(topic, dir).ErrorCount++
}

// GetTopicInfo gets a copy of the information for a topic
func (r *Registry) GetTopicInfo(topic string, dir Direction) (TopicInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.topics[key{topic, dir}]
	if !exists {
		return TopicInfo{}, false
	}
	return *info, true
}

// GetTopicStats returns a snapshot of every topic, sorted by topic then direction
func (r *Registry) GetTopicStats() []TopicInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]TopicInfo, 0, len(r.topics))
	for _, info := range r.topics {
		stats = append(stats, *info)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Topic != stats[j].Topic {
			return stats[i].Topic < stats[j].Topic
		}
		return stats[i].Direction < stats[j].Direction
	})
	return stats
}
