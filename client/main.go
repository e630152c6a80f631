package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeRequestJoin  = 101
	MsgTypeRequestLeave = 102
	MsgTypeReady        = 103
	MsgTypePlayCard     = 104
	MsgTypeDrawCard     = 105
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func sendJSON(c *websocket.Conn, msgID uint16, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return send(c, msgID, data)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
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
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Println("Commands: join <code> | ready | play <index> | draw | leave")

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
			case "join":
				if len(fields) < 2 {
					log.Println("Usage: join <code>")
					continue
				}
				err = sendJSON(c, MsgTypeRequestJoin, map[string]string{"room_code": fields[1]})
			case "ready":
				err = send(c, MsgTypeReady, []byte("{}"))
			case "play":
				if len(fields) < 2 {
					log.Println("Usage: play <index>")
					continue
				}
				index, convErr := strconv.Atoi(fields[1])
				if convErr != nil {
					log.Println("Card index must be a number")
					continue
				}
				err = sendJSON(c, MsgTypePlayCard, map[string]int{"card_index": index})
			case "draw":
				err = send(c, MsgTypeDrawCard, []byte("{}"))
			case "leave":
				err = send(c, MsgTypeRequestLeave, []byte("{}"))
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}

			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
