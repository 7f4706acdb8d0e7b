// Package message implements the per-conversation message log.
//
// The Store keeps one ordered log per conversation id and is the only writer
// of message status. It supports optimistic insertion (a locally generated
// placeholder shown before remote confirmation), id-deduplicated merging of
// remotely loaded pages, and monotonic delivery-status advancement.
//
// Example:
//
//	s := message.NewStore()
//	tmp := s.InsertOptimistic(convID, selfID, "hello")
//	// ... remote send succeeds ...
//	s.ConfirmOptimistic(convID, tmp.ID, confirmed)
package message
