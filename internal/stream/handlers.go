package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/:workoutID", websocket.New(func(c *websocket.Conn) {
		sub := hub.Attach(c.Params("workoutID"))
		defer hub.Detach(sub)

		done := make(chan struct{})
		go func() {
			for frame := range sub.Frames {
				if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		<-done
	}))
}
