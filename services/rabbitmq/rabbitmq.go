package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/streadway/amqp"
)

// Connection publishes meal events to a set of durable queues.
type Connection struct {
	mu      sync.Mutex
	name    string
	domain  string
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Queues  []string
	Err     chan error
	closed  int32
	gen     int64
}

var (
	poolMu         sync.Mutex
	connectionPool = make(map[string]*Connection)
)

//NewConnection returns the new connection object
func NewConnection(name, domain string, queues []string) *Connection {
	poolMu.Lock()
	defer poolMu.Unlock()
	if c, ok := connectionPool[name]; ok {
		return c
	}
	c := &Connection{
		name:   name,
		domain: domain,
		Queues: queues,
		Err:    make(chan error, 1),
	}
	connectionPool[name] = c
	return c
}

//GetConnection returns the connection which was instantiated
func GetConnection(name string) *Connection {
	poolMu.Lock()
	defer poolMu.Unlock()
	return connectionPool[name]
}

func (c *Connection) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Connection) connectLocked() error {
	var err error
	c.Conn, err = amqp.Dial(c.domain)
	if err != nil {
		return fmt.Errorf("Error in creating rabbitmq connection: %s", err.Error())
	}
	atomic.StoreInt32(&c.closed, 0)
	gen := atomic.AddInt64(&c.gen, 1)
	closeNotify := c.Conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		<-closeNotify
		if atomic.LoadInt64(&c.gen) != gen {
			return
		}
		atomic.StoreInt32(&c.closed, 1)
		select {
		case c.Err <- errors.New("Connection Closed"):
		default:
		}
	}()
	c.Channel, err = c.Conn.Channel()
	if err != nil {
		return fmt.Errorf("Channel: %s", err)
	}
	return c.bindQueueLocked()
}

func (c *Connection) BindQueue() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindQueueLocked()
}

func (c *Connection) bindQueueLocked() error {
	for _, q := range c.Queues {
		if _, err := c.Channel.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("error in declaring the queue %s", err)
		}
	}
	return nil
}

//Reconnect reconnects the connection
func (c *Connection) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return c.connectLocked()
}

// Connected reports whether the last connection is still open.
func (c *Connection) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn != nil && c.Channel != nil && atomic.LoadInt32(&c.closed) == 0
}

// Publish sends body as a persistent JSON message, reconnecting once when the
// connection has dropped since the last publish.
func (c *Connection) Publish(queue string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.Err:
		c.closeLocked()
	default:
	}
	if c.Conn == nil || c.Channel == nil || atomic.LoadInt32(&c.closed) == 1 {
		if err := c.connectLocked(); err != nil {
			return err
		}
	}

	return c.Channel.Publish(
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		})
}

// QueueDepth returns the number of ready messages per declared queue.
func (c *Connection) QueueDepth() (map[string]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Channel == nil {
		return nil, errors.New("channel not open")
	}
	depth := make(map[string]int, len(c.Queues))
	for _, q := range c.Queues {
		queue, err := c.Channel.QueueInspect(q)
		if err != nil {
			return nil, fmt.Errorf("Queue[%s] error: %s", q, err.Error())
		}
		depth[q] = queue.Messages
	}
	return depth, nil
}

func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Connection) closeLocked() {
	if c.Channel != nil {
		c.Channel.Close()
		c.Channel = nil
	}
	if c.Conn != nil {
		c.Conn.Close()
		c.Conn = nil
	}
}
