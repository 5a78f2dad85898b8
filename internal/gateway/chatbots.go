package gateway

import "context"

type botPrompt struct {
	Message string `json:"message"`
}

// AskWiki queries the Wikipedia assistant.
func (c *Client) AskWiki(ctx context.Context, message string) (BotReply, error) {
	var reply BotReply
	err := c.sendJSON(ctx, "POST", "/chatbot/wiki", botPrompt{Message: message}, &reply)
	return reply, err
}

// AskProgramming queries the programming assistant.
func (c *Client) AskProgramming(ctx context.Context, message string) (BotReply, error) {
	var reply BotReply
	err := c.sendJSON(ctx, "POST", "/chatbot/programming", botPrompt{Message: message}, &reply)
	return reply, err
}
