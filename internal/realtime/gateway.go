package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/common/metrics"
)

// Wire event types exchanged with subscribers. A register frame carries a
// bare user identifier, a newNotification frame carries a bare message text.
// There is no message id and no acknowledgement.
const (
	EventRegister        = "register"
	EventNewNotification = "newNotification"
)

// Frame is the JSON envelope for both event types.
type Frame struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Gateway terminates client websocket connections and drives registry
// membership. A connection moves Connected -> Identified (after a register
// frame) -> Closed; the close path always unregisters, which is a no-op for
// connections that never identified.
type Gateway struct {
	registry     *Registry
	logger       logger.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

func NewGateway(registry *Registry, log logger.Logger, readBufferSize int, writeTimeout time.Duration) *Gateway {
	return &Gateway{
		registry: registry,
		logger:   log.WithFields(map[string]interface{}{"component": "gateway"}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: readBufferSize,
			// Trusted boundary, same as the delivery ingestion side.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
	}
}

// wsConn adapts one websocket connection to the Handle interface. gorilla
// allows at most one concurrent writer, so sends are serialized by a mutex.
type wsConn struct {
	ws           *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func (c *wsConn) Send(event, data string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteJSON(Frame{Event: event, Data: data})
}

// Handler returns the gin handler terminating websocket connections.
func (g *Gateway) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			g.logger.Warn("websocket upgrade failed", map[string]interface{}{
				"remoteAddr": c.Request.RemoteAddr,
				"error":      err,
			})
			return
		}

		conn := &wsConn{ws: ws, writeTimeout: g.writeTimeout}
		metrics.ConnectionsActive.Inc()
		g.logger.Info("connected", map[string]interface{}{
			"remoteAddr": ws.RemoteAddr().String(),
		})

		defer func() {
			// Unconditional: runs even if the connection never identified,
			// in which case the registry scan finds nothing.
			g.registry.Unregister(conn)
			metrics.ConnectionsActive.Dec()
			_ = ws.Close()
			g.logger.Info("disconnected", map[string]interface{}{
				"remoteAddr": ws.RemoteAddr().String(),
			})
		}()

		g.readLoop(conn)
	}
}

// readLoop consumes frames until the transport closes for any reason.
func (g *Gateway) readLoop(conn *wsConn) {
	for {
		var frame Frame
		if err := conn.ws.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.logger.Warn("read failed", map[string]interface{}{
					"error": err,
				})
			}
			return
		}

		switch frame.Event {
		case EventRegister:
			if frame.Data == "" {
				g.logger.Warn("empty register frame ignored", nil)
				continue
			}
			// Re-announcements simply re-register; each one supersedes any
			// prior binding for the same user, possibly on another connection.
			g.registry.Register(frame.Data, conn)
			metrics.Registrations.Inc()
			g.logger.Info("identified", map[string]interface{}{
				"userId": frame.Data,
			})
		default:
			g.logger.Debug("unknown frame ignored", map[string]interface{}{
				"event": frame.Event,
			})
		}
	}
}
