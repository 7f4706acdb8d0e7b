// Package conversation implements the conversation store: the set of
// conversations visible to the user, partitioned into accepted and pending,
// with per-conversation unread counts.
//
// The Store is the exclusive owner of the conversation collection and of
// each conversation's unread count. It consumes remote list results through
// Upsert and local message events through RecordIncomingMessage, and notifies
// subscribers after every observable change.
package conversation
