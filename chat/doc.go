// Package chat implements the client side of a streaming assistant turn.
//
// A Conversation owns the message history and the server-issued session
// identifiers. Each call to Send appends the user message, opens a request
// through a Transport, and feeds the event stream through a Dispatcher,
// which updates a Turn and notifies a Sink. The Sink receives full text on
// every update, so a renderer never has to reassemble deltas.
//
// Basic usage:
//
//	conv := chat.NewConversation(client.New(baseURL, token),
//		chat.WithModel("claude-haiku-4.5"),
//		chat.WithSink(renderer),
//	)
//	result, err := conv.Send(ctx, "Hello")
//	if err != nil {
//		return err
//	}
//	fmt.Println(result.Text)
package chat
