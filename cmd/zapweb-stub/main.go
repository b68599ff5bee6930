// zapweb-stub is a development backend: canned REST data plus a
// websocket that emits a synthetic live message on an interval. The
// payloads deliberately mix the id shapes real servers produce.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
	_ = c.Close()
}

func (h *hub) broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		if err := c.WriteJSON(v); err != nil {
			delete(h.conns, c)
			_ = c.Close()
		}
	}
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	interval := flag.Duration("interval", 20*time.Second, "synthetic message interval")
	flag.Parse()

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	h := newHub()

	r.GET("/api/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "online"})
	})

	r.GET("/api/chats", func(c *gin.Context) {
		c.JSON(http.StatusOK, chats())
	})

	r.GET("/api/chats/:id/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, messages(c.Param("id")))
	})

	r.POST("/api/chats/:id/read", func(c *gin.Context) {
		log.Printf("mark read: %s", c.Param("id"))
		c.Status(http.StatusNoContent)
	})

	r.GET("/api/statuses", func(c *gin.Context) {
		c.JSON(http.StatusOK, statuses())
	})

	r.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		h.add(conn)
		_ = conn.WriteJSON(gin.H{"event": "ready", "payload": nil})
		go func() {
			defer h.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	go func() {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		n := 0
		for range ticker.C {
			n++
			h.broadcast(gin.H{
				"event": "message",
				"payload": gin.H{
					"msg": gin.H{
						"id":         gin.H{"_serialized": uuid.New().String()},
						"from":       "5511999990001@c.us",
						"body":       fmt.Sprintf("live message #%d", n),
						"type":       "chat",
						"notifyName": "Alice",
						"timestamp":  time.Now().Unix(),
					},
				},
			})
		}
	}()

	log.Printf("stub backend listening on %s", *addr)
	if err := r.Run(*addr); err != nil {
		log.Fatal(err)
	}
}

func chats() []gin.H {
	now := time.Now().Unix()
	return []gin.H{
		{
			// Plain string id.
			"id":          "5511999990001@c.us",
			"name":        "Alice",
			"unreadCount": 3,
			"timestamp":   now - 60,
			"lastMessage": gin.H{"body": "see you there"},
		},
		{
			// Serialized object id, alternate title key.
			"id":             gin.H{"_serialized": "5511999990002@c.us"},
			"formattedTitle": "Bob",
			"unread":         1,
			"timestamp":      now - 600,
			"lastMessage":    gin.H{"text": "ok!"},
		},
		{
			// user/server pair id, no unread fields at all.
			"id":        gin.H{"user": "5511999990003", "server": "c.us"},
			"timestamp": now - 7200,
		},
	}
}

func messages(conversationID string) []gin.H {
	now := time.Now().Unix()
	mk := func(i int, body string, fromMe bool) gin.H {
		from := conversationID
		to := "me@c.us"
		if fromMe {
			from, to = to, from
		}
		return gin.H{
			"id":        gin.H{"_serialized": fmt.Sprintf("msg-%s-%d", conversationID, i)},
			"from":      from,
			"to":        to,
			"fromMe":    fromMe,
			"body":      body,
			"type":      "chat",
			"timestamp": now - int64((10-i)*120),
		}
	}
	return []gin.H{
		mk(1, "hey, are we still on for tonight?", false),
		mk(2, "yes! 8pm works", true),
		mk(3, "great, booking a table", false),
		mk(4, "perfect", true),
		mk(5, "they had a slot at 8:30, took it", false),
		mk(6, "see you there", false),
	}
}

func statuses() []gin.H {
	now := time.Now().Unix()
	return []gin.H{
		{
			"id":        fmt.Sprintf("status-%s", uuid.New().String()),
			"contactId": "5511999990001@c.us",
			"type":      "image",
			"mediaUrl":  "https://example.com/media/sunset.jpg",
			"timestamp": now - 3600,
		},
		{
			// No id at all: clients fall back to a composite key.
			"contactId": "5511999990001@c.us",
			"type":      "chat",
			"body":      "what a day",
			"timestamp": now - 3500,
		},
		{
			"id":          fmt.Sprintf("status-%s", uuid.New().String()),
			"from":        "5511999990002@c.us",
			"contactName": "Bob",
			"type":        "video",
			"mediaUrl":    "https://example.com/media/trip.mp4",
			"timestamp":   now - 1800,
		},
	}
}
