package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// send formats and sends an event to the WebSocket server.
func send(c *websocket.Conn, name string, data interface{}) error {
	return c.WriteJSON(event{Event: name, Data: data})
}

func main() {
	addr := flag.String("addr", "localhost:3000", "server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			var evt struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}
			if err := c.ReadJSON(&evt); err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- RECV (%s): %s", evt.Event, string(evt.Data))
		}
	}()

	var roomCode, playerName string

	log.Println("Client started. Commands:")
	log.Println("  join <room> <name> | rejoin <room> <name> | leave")
	log.Println("  start | word <description> | say <message> | vote <player>")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "join", "rejoin":
				if len(fields) < 3 {
					log.Printf("Usage: %s <room> <name>", fields[0])
					continue
				}
				roomCode, playerName = fields[1], fields[2]
				evtName := "joinRoom"
				if fields[0] == "rejoin" {
					evtName = "rejoinRoom"
				}
				err = send(c, evtName, map[string]string{"room": roomCode, "name": playerName})
			case "leave":
				err = send(c, "leaveRoom", map[string]string{"room": roomCode})
			case "start":
				err = send(c, "startGame", map[string]string{"room": roomCode})
			case "restart":
				err = send(c, "restartGame", map[string]string{"room": roomCode})
			case "word":
				err = send(c, "submitDescription", map[string]string{
					"room": roomCode, "word": strings.Join(fields[1:], " "),
				})
			case "say":
				err = send(c, "sendMessage", map[string]string{
					"room": roomCode, "message": strings.Join(fields[1:], " "),
				})
			case "vote":
				if len(fields) < 2 {
					log.Println("Usage: vote <player>")
					continue
				}
				err = send(c, "vote", map[string]string{"room": roomCode, "target": fields[1]})
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", fields[0])
		}
	}
}
