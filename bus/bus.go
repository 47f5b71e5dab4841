package bus

import (
	"sync"
)

// Wildcard matches exactly one topic level in a subscription.
const Wildcard = "+"

// Topic is a path of string tokens, e.g. T("hal", "cap", "serial", "uart0").
type Topic []string

// T builds a topic from its tokens.
func T(tokens ...string) Topic { return Topic(tokens) }

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie
// -----------------------------------------------------------------------------

type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok string, create bool) *node {
	if n.children == nil {
		if !create {
			return nil
		}
		n.children = make(map[string]*node)
	}
	c, ok := n.children[tok]
	if !ok {
		if !create {
			return nil
		}
		c = &node{}
		n.children[tok] = c
	}
	return c
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
}

// New creates a bus; queueLen bounds each subscription's buffer.
func New(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

func (b *Bus) subscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	// Replay retained messages that the new subscription matches.
	b.replayRetained(b.root, sub.topic, sub)
}

// replayRetained walks the trie following topic (honouring "+") and
// delivers any retained message found at the terminal nodes.
func (b *Bus) replayRetained(n *node, topic Topic, sub *Subscription) {
	if len(topic) == 0 {
		if n.retained != nil {
			deliver(sub, n.retained)
		}
		return
	}
	tok := topic[0]
	if tok == Wildcard {
		for _, c := range n.children {
			b.replayRetained(c, topic[1:], sub)
		}
		return
	}
	if c := n.child(tok, false); c != nil {
		b.replayRetained(c, topic[1:], sub)
	}
}

// Publish delivers msg to every subscription whose topic matches,
// treating "+" in subscriptions as a single-level wildcard. Retained
// messages are stored (or cleared when Payload is nil) at the exact
// topic node.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fanout(b.root, msg.Topic, msg)

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
}

func (b *Bus) fanout(n *node, rest Topic, msg *Message) {
	if len(rest) == 0 {
		for _, sub := range n.subs {
			deliver(sub, msg)
		}
		return
	}
	if n.children == nil {
		return
	}
	if c, ok := n.children[rest[0]]; ok {
		b.fanout(c, rest[1:], msg)
	}
	if c, ok := n.children[Wildcard]; ok {
		b.fanout(c, rest[1:], msg)
	}
}

// deliver never blocks; on a full queue the oldest message is dropped.
func deliver(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- msg
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	path := make([]*node, 0, len(sub.topic))
	for _, tok := range sub.topic {
		c := n.child(tok, false)
		if c == nil {
			return
		}
		path = append(path, n)
		n = c
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	// Prune now-empty nodes bottom-up.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent, tok := path[i], sub.topic[i]
		child := parent.children[tok]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, tok)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection groups subscriptions under one owner so they can be torn
// down together.
type Connection struct {
	bus  *Bus
	mu   sync.Mutex
	subs []*Subscription
	id   string
}

func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// NewMessage builds a message for Publish.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Reply publishes payload to req's ReplyTo topic; no-op when the
// request did not ask for a reply.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if len(req.ReplyTo) == 0 {
		return
	}
	c.Publish(&Message{Topic: req.ReplyTo, Payload: payload, Retained: retained})
}

func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.subscribe(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect removes every subscription owned by this connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
