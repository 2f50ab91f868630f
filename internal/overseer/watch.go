package overseer

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/talgya/hobbit-home/internal/engine"
)

// Watch streams colony events to fn until ctx is done or the server hangs
// up. It returns nil when ctx ends the stream.
func (o *Observer) Watch(ctx context.Context, fn func(engine.Event)) error {
	url := "ws" + strings.TrimPrefix(o.BaseURL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var e engine.Event
		if err := conn.ReadJSON(&e); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		fn(e)
	}
}
