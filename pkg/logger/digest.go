package logger

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// Publisher ships a batch of digest entries, typically to Kafka.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type DigestConfig struct {
	Interval  time.Duration // flush period
	MaxUnique int           // flush early once this many distinct entries are held
	Topic     string
	Publisher Publisher
}

// DigestEntry counts repeats of one (level, message, caller) triple.
type DigestEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller"`
	Sample    map[string]interface{} `json:"sample"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// ErrorDigest folds repeated error logs into counted entries and ships them periodically.
type ErrorDigest struct {
	cfg     DigestConfig
	mu      sync.Mutex
	entries map[uint64]*DigestEntry
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewErrorDigest(cfg DigestConfig) *ErrorDigest {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxUnique <= 0 {
		cfg.MaxUnique = 100
	}
	d := &ErrorDigest{
		cfg:     cfg,
		entries: make(map[uint64]*DigestEntry),
		stop:    make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

func (d *ErrorDigest) Add(level, message string, fields map[string]interface{}, caller string) {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%s|%s", level, message, caller)
	key := h.Sum64()
	now := time.Now()

	d.mu.Lock()
	if e, ok := d.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		d.entries[key] = &DigestEntry{
			Level:     level,
			Message:   message,
			Caller:    caller,
			Sample:    fields,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	var batch []DigestEntry
	if len(d.entries) >= d.cfg.MaxUnique {
		batch = d.drainLocked()
	}
	d.mu.Unlock()

	if batch != nil {
		go d.ship(batch)
	}
}

// Pending reports how many distinct entries are waiting to be shipped.
func (d *ErrorDigest) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *ErrorDigest) loop() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.flush()
		case <-d.stop:
			d.flush()
			return
		}
	}
}

func (d *ErrorDigest) flush() {
	d.mu.Lock()
	batch := d.drainLocked()
	d.mu.Unlock()
	if batch != nil {
		d.ship(batch)
	}
}

func (d *ErrorDigest) drainLocked() []DigestEntry {
	if len(d.entries) == 0 {
		return nil
	}
	out := make([]DigestEntry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, *e)
	}
	d.entries = make(map[uint64]*DigestEntry)
	return out
}

func (d *ErrorDigest) ship(batch []DigestEntry) {
	if d.cfg.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.cfg.Publisher.PublishMessage(ctx, d.cfg.Topic, batch); err != nil {
		fmt.Printf("error digest: publish failed: %v\n", err)
	}
}

// Close flushes what is pending and stops the ticker.
func (d *ErrorDigest) Close() {
	d.once.Do(func() {
		close(d.stop)
		d.wg.Wait()
	})
}
