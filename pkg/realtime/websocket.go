package realtime

import (
	"io"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	log "github.com/sirupsen/logrus"
)

func (cc *Channel) inboxWorker() {
	state := ws.StateServerSide
	ch := wsutil.ControlFrameHandler(cc.conn, state)

	r := &wsutil.Reader{
		Source:         cc.conn,
		State:          state,
		CheckUTF8:      true,
		OnIntermediate: ch,
	}

	for {
		h, err := r.NextFrame()
		if err != nil {
			log.Debugf("websocket read message error: %v", err)

			// We should not return the error because the echo framework
			// doesn't expect an error at this stage. If you return an
			// error you will see hijacked messages on the console.
			cc.terminate()
			return
		}

		// We received an operation control frame and handle it before
		// continuation.
		if h.OpCode.IsControl() {
			// Check for OpClose before handling the control frame. On
			// OpClose the socket was closed by the client. We can exit our
			// handler now.
			if h.OpCode == ws.OpClose {
				log.Info("websocket connection closed gracefully")
				cc.terminate()
				return
			}

			// Handle the control frame
			if err = ch(h, r); err != nil {
				log.Errorf("websocket handles control frame error: %v", err)
				cc.terminate()
				return
			}
			continue
		}

		// Read all data from websocket client
		req, err := io.ReadAll(r)
		if err != nil {
			log.Errorf("websocket read error: %v", err)
			cc.terminate()
			return
		}

		// Handle the received data
		if _, _, err = cc.HandleMessage(req); err != nil {
			log.Errorf("websocket handle request error: %v", err)
			cc.terminate()
			return
		}
	}
}

func (cc *Channel) outboxWorker() {
	state := ws.StateServerSide
	w := wsutil.NewWriter(cc.conn, state, 0)

	for {
		select {
		case res := <-cc.wsOutboxCh:
			webSocketWrite(cc.conn, w, state, res, cc)
			if res.Flag != FlagContinue {
				return
			}
		case <-cc.wsCloseCh:
			webSocketCloseGraceful(cc.conn, w, state, cc)
			return
		case <-cc.stopCh:
			return
		}
	}
}

func webSocketWrite(conn net.Conn, w *wsutil.Writer, state ws.State, res *Response, cc *Channel) {
	if res.Data != nil {
		w.Reset(conn, state, ws.OpText)

		var err error
		if _, err = w.Write(res.Data); err == nil {
			err = w.Flush()
		}
		if err != nil {
			log.Errorf("websocket write error: %s", err)
			cc.terminate()
			return
		}
	}

	if res.Flag == FlagCloseGracefully {
		webSocketCloseGraceful(conn, w, state, cc)
	} else if res.Flag == FlagTerminate {
		cc.terminate()
	}
}

func webSocketCloseGraceful(conn net.Conn, w *wsutil.Writer, state ws.State, cc *Channel) {
	log.Debug("websocket graceful close initiated")

	w.Reset(conn, state, ws.OpClose)

	// Write empty string
	var err error
	if _, err = w.Write([]byte("")); err == nil {
		err = w.Flush()
	}
	if err != nil {
		log.Errorf("websocket write error: %s", err)
	}

	cc.terminate()
}
