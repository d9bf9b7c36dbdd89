package server

// MessageCount returns the sequence id of the last broadcast chat message.
func (h *Hub) MessageCount() int64 {
	return h.messageCount.Load()
}

// SendChan exposes the client's outbound queue.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}
