package inboxcore

import (
	"context"
	"sync"
)

// opKind identifies the kind of mutating operation holding an in-flight
// key. It decides whether a second intent on the same key is rejected or
// coalesced.
type opKind uint8

const (
	opFriendSend opKind = iota
	opFriendCancel
	opFriendAccept
	opFriendIgnore
	opMessageSend
)

// inflightOp is one reserved key. done is closed when the operation
// resolves, successfully or not.
type inflightOp struct {
	kind opKind
	done chan struct{}
}

// inflightTable enforces at-most-one in-flight mutating operation per
// logical key: per other-user id for friendship actions, per conversation
// (or receiver) for sends.
type inflightTable struct {
	ops map[string]*inflightOp
	mu  sync.Mutex
}

func newInflightTable() *inflightTable {
	return &inflightTable{
		ops: make(map[string]*inflightOp),
	}
}

// coalesces reports whether an incoming operation should wait for the
// in-flight one instead of failing fast. Only a cancel chasing an in-flight
// send request coalesces: the cancel waits for the send's resolution and is
// then issued normally.
func coalesces(incoming, inflight opKind) bool {
	return incoming == opFriendCancel && inflight == opFriendSend
}

// begin reserves the key for the given operation kind and returns the
// release function. A busy key fails with ErrOperationInProgress unless the
// pair coalesces, in which case begin blocks until the in-flight operation
// resolves (or the context is cancelled) and then reserves the key.
func (t *inflightTable) begin(ctx context.Context, key string, kind opKind) (release func(), err error) {
	for {
		t.mu.Lock()
		existing, busy := t.ops[key]
		if !busy {
			op := &inflightOp{kind: kind, done: make(chan struct{})}
			t.ops[key] = op
			t.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					t.mu.Lock()
					delete(t.ops, key)
					t.mu.Unlock()
					close(op.done)
				})
			}, nil
		}
		t.mu.Unlock()

		if !coalesces(kind, existing.kind) {
			return nil, ErrOperationInProgress
		}

		select {
		case <-existing.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
