package producers

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleProducer writes each message as one line, prefixed with its topic.
// It stands in for Kafka when kafka.enabled is false.
type ConsoleProducer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleProducer(out io.Writer) *ConsoleProducer {
	return &ConsoleProducer{out: out}
}

func (c *ConsoleProducer) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "%s\t%s\n", topic, msg)
	return err
}

func (c *ConsoleProducer) Close() error { return nil }
