// bus.go
package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// -----------------------------------------------------------------------------
// Tokens + Topics
// -----------------------------------------------------------------------------

// Token is a single element in a topic path.
// It can be either a string or an integer.
type Token struct {
	kind byte // 0 = string, 1 = int
	sval string
	ival int
}

// Constructors
func S(s string) Token { return Token{kind: 0, sval: s} }
func I(i int) Token    { return Token{kind: 1, ival: i} }

// Wildcard tokens: "+" matches exactly one token, "#" matches one or
// more trailing tokens. Only meaningful in subscription topics.
var (
	tokPlus = S("+")
	tokHash = S("#")
)

// Value returns the token as a plain any (string or int).
func (t Token) Value() any {
	if t.kind == 1 {
		return t.ival
	}
	return t.sval
}

// Topic is a sequence of tokens.
type Topic struct {
	toks []Token
}

// T builds a Topic from strings and ints. Other element types are
// coerced to their string representation only if they are Tokens.
func T(elems ...any) Topic {
	toks := make([]Token, 0, len(elems))
	for _, e := range elems {
		switch v := e.(type) {
		case string:
			toks = append(toks, S(v))
		case int:
			toks = append(toks, I(v))
		case Token:
			toks = append(toks, v)
		}
	}
	return Topic{toks: toks}
}

func (t Topic) Len() int { return len(t.toks) }

// At returns the i-th element as a plain any (string or int).
func (t Topic) At(i int) any {
	if i < 0 || i >= len(t.toks) {
		return nil
	}
	return t.toks[i].Value()
}

// Append returns a new Topic with elems appended.
func (t Topic) Append(elems ...any) Topic {
	n := T(elems...)
	out := make([]Token, 0, len(t.toks)+len(n.toks))
	out = append(out, t.toks...)
	out = append(out, n.toks...)
	return Topic{toks: out}
}

// Equal reports exact token-wise equality (no wildcard semantics).
func (t Topic) Equal(o Topic) bool {
	if len(t.toks) != len(o.toks) {
		return false
	}
	for i := range t.toks {
		if t.toks[i] != o.toks[i] {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// CanReply reports whether the publisher asked for a reply.
func (m *Message) CanReply() bool { return m.ReplyTo.Len() > 0 }

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	bus   *Bus
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// deliver enqueues without blocking; drops the oldest message when full.
func (s *Subscription) deliver(msg *Message) {
	select {
	case s.ch <- msg:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- msg:
		default:
		}
	}
}

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[Token]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok Token) *node {
	if n.children == nil {
		return nil
	}
	return n.children[tok]
}

func (n *node) ensureChild(tok Token) *node {
	if n.children == nil {
		n.children = make(map[Token]*node)
	}
	c, ok := n.children[tok]
	if !ok {
		c = &node{}
		n.children[tok] = c
	}
	return c
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		root: &node{},
		qLen: queueLen,
	}
}

// addSubscription inserts a subscription into the trie and delivers any
// retained messages its (possibly wildcarded) topic matches.
func (b *Bus) addSubscription(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range topic.toks {
		n = n.ensureChild(tok)
	}
	n.subs = append(n.subs, sub)

	b.deliverRetained(b.root, topic.toks, sub)
}

// deliverRetained walks concrete trie branches that match pattern and
// hands their retained messages to sub.
func (b *Bus) deliverRetained(n *node, pattern []Token, sub *Subscription) {
	if n == nil {
		return
	}
	if len(pattern) == 0 {
		if n.retained != nil {
			sub.deliver(n.retained)
		}
		return
	}
	head, rest := pattern[0], pattern[1:]
	switch head {
	case tokHash:
		// One or more remaining tokens: every retained message below here.
		for _, c := range n.children {
			b.retainedSubtree(c, sub)
		}
	case tokPlus:
		for _, c := range n.children {
			b.deliverRetained(c, rest, sub)
		}
	default:
		b.deliverRetained(n.child(head), rest, sub)
	}
}

func (b *Bus) retainedSubtree(n *node, sub *Subscription) {
	if n.retained != nil {
		sub.deliver(n.retained)
	}
	for _, c := range n.children {
		b.retainedSubtree(c, sub)
	}
}

// Publish delivers a message to all subscribers whose topic matches.
// The message topic must be concrete (no wildcards).
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.matchAndDeliver(b.root, msg.Topic.toks, msg)

	if !msg.Retained {
		return
	}
	// Store (or clear, when payload is nil) at the concrete node.
	n := b.root
	for _, tok := range msg.Topic.toks {
		n = n.ensureChild(tok)
	}
	if msg.Payload == nil {
		n.retained = nil
	} else {
		n.retained = msg
	}
}

// matchAndDeliver walks subscription branches, honouring wildcards.
func (b *Bus) matchAndDeliver(n *node, topic []Token, msg *Message) {
	if n == nil {
		return
	}
	// "#" at this level swallows the whole remainder.
	if len(topic) > 0 {
		if h := n.child(tokHash); h != nil {
			for _, s := range h.subs {
				s.deliver(msg)
			}
		}
	}
	if len(topic) == 0 {
		for _, s := range n.subs {
			s.deliver(msg)
		}
		return
	}
	head, rest := topic[0], topic[1:]
	b.matchAndDeliver(n.child(head), rest, msg)
	b.matchAndDeliver(n.child(tokPlus), rest, msg)
}

// unsubscribe removes a subscription from the trie.
func (b *Bus) unsubscribe(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, t := range topic.toks {
		child := n.child(t)
		if child == nil {
			return
		}
		stack = append(stack, n)
		n = child
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	// Prune empty nodes.
	for i := len(topic.toks) - 1; i >= 0; i-- {
		parent := stack[i]
		key := topic.toks[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus    *Bus
	subs   []*Subscription
	mu     sync.Mutex
	id     string
	nextRq uint32 // reply-topic sequence
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{
		bus: b,
		id:  id,
	}
}

// NewMessage builds a message ready for Publish.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		bus:   c.bus,
		conn:  c,
	}
	c.bus.addSubscription(topic, sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub.topic, sub)
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

// Reply publishes a response to msg's ReplyTo topic.
func (c *Connection) Reply(msg *Message, payload any, retained bool) {
	if !msg.CanReply() {
		return
	}
	c.bus.Publish(&Message{Topic: msg.ReplyTo, Payload: payload, Retained: retained})
}

// ErrNoReply is returned by RequestWait when ctx expires first.
var ErrNoReply = errors.New("no reply")

// RequestWait publishes msg with a private ReplyTo topic and waits for
// the first response or ctx cancellation.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	seq := int(atomic.AddUint32(&c.nextRq, 1))
	replyTo := T("_reply", c.id, seq)
	sub := c.Subscribe(replyTo)
	defer c.Unsubscribe(sub)

	msg.ReplyTo = replyTo
	c.bus.Publish(msg)

	select {
	case <-ctx.Done():
		return nil, ErrNoReply
	case m := <-sub.ch:
		return m, nil
	}
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub.topic, sub)
		close(sub.ch)
	}
}
