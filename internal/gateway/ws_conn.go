package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/audio"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
	"github.com/eleven-am/voice-recognizer/internal/transcript"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBuffer     = 128
	storeTimeout   = 2 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// recognizeConn joins one websocket to one recognizer session. Binary
// frames carry audio, text frames carry JSON control messages.
type recognizeConn struct {
	ws          *websocket.Conn
	session     *recognizer.Session
	manager     *SessionManager
	transcripts TranscriptSink
	format      audio.Format
	logger      *slog.Logger

	send   chan *ServerMessage
	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	// clientRate follows engineRate unless the client chose a rate.
	rateMu      sync.Mutex
	clientRate  int
	clientFixed bool
	engineRate  int
}

func newRecognizeConn(ws *websocket.Conn, session *recognizer.Session, manager *SessionManager, transcripts TranscriptSink, format audio.Format, clientRate int, logger *slog.Logger) *recognizeConn {
	engineRate := session.SampleRate()
	clientFixed := clientRate > 0
	if !clientFixed {
		clientRate = engineRate
	}
	return &recognizeConn{
		ws:          ws,
		session:     session,
		manager:     manager,
		transcripts: transcripts,
		format:      format,
		clientRate:  clientRate,
		clientFixed: clientFixed,
		engineRate:  engineRate,
		logger:      logger.With("session_id", session.ID()),
		send:        make(chan *ServerMessage, sendBuffer),
		done:        make(chan struct{}),
	}
}

func (c *recognizeConn) Send(msg *ServerMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- msg:
	default:
		c.logger.Warn("send buffer full, dropping message", "type", msg.Type)
	}
}

func (c *recognizeConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	return c.ws.Close()
}

func (c *recognizeConn) sendError(kind, message string) {
	c.Send(&ServerMessage{Type: MessageTypeError, Kind: kind, Message: message})
}

// bind forwards the session's events to the client.
func (c *recognizeConn) bind() {
	s := c.session
	s.On(recognizer.EventHyp, recognizer.HypFunc(func(text string, score int32) {
		c.Send(&ServerMessage{Type: MessageTypeUtterance, Phrase: text, Score: &score})
	}))
	s.On(recognizer.EventHypFinal, recognizer.HypFinalFunc(func(text string, final bool) {
		c.Send(&ServerMessage{Type: MessageTypeFinal, Phrase: text, IsFinal: &final})
		if text != "" {
			c.record(func(ctx context.Context) error {
				return c.transcripts.Append(ctx, s.ID(), transcript.Entry{Text: text, Final: final})
			})
		}
	}))
	s.On(recognizer.EventStart, recognizer.SignalFunc(func() {
		c.Send(&ServerMessage{Type: MessageTypeStart})
	}))
	s.On(recognizer.EventStop, recognizer.SignalFunc(func() {
		c.Send(&ServerMessage{Type: MessageTypeStop})
	}))
	s.On(recognizer.EventSpeechDetected, recognizer.SignalFunc(func() {
		c.Send(&ServerMessage{Type: MessageTypeSpeech})
	}))
	s.On(recognizer.EventSilenceDetected, recognizer.SignalFunc(func() {
		c.Send(&ServerMessage{Type: MessageTypeSilence})
	}))
	s.On(recognizer.EventError, recognizer.ErrorFunc(func(err *recognizer.Error) {
		c.sendError(string(err.Kind), err.Error())
		if err.Kind == recognizer.KindOperation {
			c.record(func(ctx context.Context) error {
				return c.transcripts.IncrementErrors(ctx)
			})
		}
	}))
}

func (c *recognizeConn) record(fn func(ctx context.Context) error) {
	if c.transcripts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		c.logger.Warn("failed to record transcript", "error", err)
	}
}

func (c *recognizeConn) readPump(ctx context.Context) {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}

		switch kind {
		case websocket.BinaryMessage:
			c.handleAudio(data)
		case websocket.TextMessage:
			var msg ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				c.logger.Debug("failed to unmarshal message", "error", err)
				c.sendError(string(recognizer.KindValidation), "invalid control message")
				continue
			}
			c.handleControl(ctx, &msg)
		}
	}
}

func (c *recognizeConn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))

			data, err := json.Marshal(msg)
			if err != nil {
				c.logger.Error("failed to marshal message", "error", err)
				continue
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleAudio converts one frame to PCM16 at the engine rate and decodes it
// synchronously. Failures reach the client through the error event.
func (c *recognizeConn) handleAudio(data []byte) {
	var samples []int16
	switch c.format {
	case audio.FormatS16LE:
		samples = audio.PCMBytesToInt16(data)
	default:
		samples = audio.FloatToPCM16(audio.Float32BytesToFloat32(data))
	}
	if len(samples) == 0 {
		return
	}

	from, to := c.rates()
	_ = c.session.WriteSync(audio.ResampleInt16(samples, from, to))
}

// rates returns the client and engine sample rates.
func (c *recognizeConn) rates() (int, int) {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	return c.clientRate, c.engineRate
}

func (c *recognizeConn) setEngineRate(rate int) {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	c.engineRate = rate
	if !c.clientFixed {
		c.clientRate = rate
	}
}

func (c *recognizeConn) handleControl(ctx context.Context, msg *ClientMessage) {
	s := c.session
	switch msg.Type {
	case MessageTypeStart:
		_ = s.Start()
	case MessageTypeStop:
		_ = s.Stop()
	case MessageTypeRestart:
		_ = s.Restart()
	case MessageTypeSearch:
		if msg.Name == "" {
			c.sendError(string(recognizer.KindValidation), "search needs a name")
			return
		}
		s.SetSearch(msg.Name)
		c.Send(&ServerMessage{Type: MessageTypeSearch, Search: s.Search()})
	case MessageTypeSilenceDetection:
		if msg.Enabled == nil {
			c.sendError(string(recognizer.KindValidation), "silence_detection needs enabled")
			return
		}
		s.SetSilenceDetection(*msg.Enabled)
		enabled := s.SilenceDetection()
		c.Send(&ServerMessage{Type: MessageTypeSilenceDetection, Enabled: &enabled})
	case MessageTypeReconfig:
		opts, err := recognizer.OptionsFrom(msg.Options)
		if err != nil {
			c.sendError(string(recognizer.KindValidation), err.Error())
			return
		}
		if err := c.manager.Reconfigure(ctx, s, opts); err != nil {
			return
		}
		c.setEngineRate(s.SampleRate())
		c.Send(&ServerMessage{Type: MessageTypeReady, SessionID: s.ID(), Search: s.Search(), SampleRate: s.SampleRate()})
	case MessageTypeLookup:
		found := s.LookupWords(msg.Words)
		c.Send(&ServerMessage{Type: MessageTypeLookup, LookupPayload: &LookupPayload{Found: found.Found, Missing: found.Missing}})
	default:
		c.sendError(string(recognizer.KindValidation), "unknown message type: "+string(msg.Type))
	}
}
