// Package inboxcore implements the relationship-and-conversation
// synchronization core of the extension: user discovery, the friendship
// request/accept protocol, and conversations gated by that relationship,
// reconciled against a remote source of truth.
//
// The package wires three stores behind a Client facade: the friendship
// state machine ([friendship.Store]), the conversation store
// ([conversation.Store]) and the message store ([message.Store]). The Client
// issues remote operations through a [RemoteAPI] collaborator, folds their
// results into the stores, and enforces at-most-one in-flight mutating
// operation per logical key so rapid duplicate intents cannot race into
// inconsistent state.
//
// # Getting Started
//
// Create a Client with the external collaborators and drive it from the UI:
//
//	client, err := inboxcore.New(remote, session, inboxcore.NewOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := client.SearchUsers(ctx, "bob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.SendFriendRequest(ctx, results[0].User.ID); err != nil {
//	    log.Fatal(err)
//	}
//
//	convID, _, err := client.SendMessage(ctx, inboxcore.SendTarget{
//	    ReceiverID: results[0].User.ID,
//	}, "hello!")
//
// # Collaborator Contracts
//
// [RemoteAPI] abstracts the named remote operations; the concrete transport
// lives outside the core (see the remote/httpapi adapter for a REST
// implementation). [SessionProvider] supplies the authenticated user id and
// token; without a session every operation fails with [ErrUnauthenticated].
// A [Notifier] receives structured outcome values, never presentation
// strings.
package inboxcore
