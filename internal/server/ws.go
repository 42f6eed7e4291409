package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taproom/taproom/internal/audio"
	"github.com/taproom/taproom/internal/voice"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 16 * 1024,
	// The terminal UI is served from the same box; any origin is fine on
	// the bar's LAN.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is a JSON control message from the terminal.
type clientMessage struct {
	Type string `json:"type"`
}

// handleVoice upgrades the connection and bridges it to a voice session:
// inbound binary frames carry mic audio, inbound JSON carries control;
// outbound binary frames carry assistant audio, outbound JSON carries
// session events.
func handleVoice(sessions *voice.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("server: ws upgrade: %v", err)
			return
		}
		defer conn.Close()

		session, err := sessions.Start(c.Request.Context())
		if err != nil {
			log.Printf("server: start session: %v", err)
			writeControl(conn, voice.Control{Type: "error", Text: "could not start a voice session"})
			return
		}
		defer sessions.Terminate(session.ID)

		writeControl(conn, voice.Control{Type: "session_created", SessionID: session.ID})

		// One writer goroutine owns the socket's write side; pongs from the
		// read loop funnel through the same channel as session output.
		pongs := make(chan struct{}, 8)
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for {
				select {
				case out, ok := <-session.Outbound():
					if !ok {
						return
					}
					if err := writeOutbound(conn, out); err != nil {
						log.Printf("server: session %s write: %v", session.ID, err)
						return
					}
				case <-pongs:
					writeControl(conn, voice.Control{Type: "pong"})
				}
			}
		}()

		readLoop(conn, session, pongs)
		conn.Close()
		<-writerDone
	}
}

// readLoop pumps terminal messages into the session until the socket drops
// or the session ends.
func readLoop(conn *websocket.Conn, session *voice.Session, pongs chan<- struct{}) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			tag, payload, err := audio.ParseFrame(data)
			if err != nil || tag != audio.FrameMic {
				continue
			}
			if err := session.HandleMicAudio(payload); err != nil {
				return
			}

		case websocket.TextMessage:
			var msg clientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			switch msg.Type {
			case "interrupt":
				if err := session.Interrupt(); err != nil {
					log.Printf("server: session %s interrupt: %v", session.ID, err)
				}
			case "ping":
				select {
				case pongs <- struct{}{}:
				default:
				}
			case "start_listening", "stop_listening":
				// The terminal gates its own mic; nothing to do server-side.
			}
		}
	}
}

func writeOutbound(conn *websocket.Conn, out voice.Outbound) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if out.Audio != nil {
		return conn.WriteMessage(websocket.BinaryMessage, audio.WrapFrame(audio.FrameAssistant, out.Audio))
	}
	if out.Control != nil {
		return conn.WriteJSON(out.Control)
	}
	return nil
}

func writeControl(conn *websocket.Conn, ctrl voice.Control) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(ctrl); err != nil {
		log.Printf("server: write control %s: %v", ctrl.Type, err)
	}
}
