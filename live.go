package vldom

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vldom/pkg/component"
	"github.com/vango-dev/vldom/pkg/location"
	"github.com/vango-dev/vldom/pkg/render"
	"github.com/vango-dev/vldom/pkg/router"
	"github.com/vango-dev/vldom/pkg/vdom"
)

// LiveMessageType is the type of a live channel message.
type LiveMessageType string

const (
	// Client to server.
	LiveNavigate LiveMessageType = "navigate"
	LiveBack     LiveMessageType = "back"
	LiveForward  LiveMessageType = "forward"

	// Server to client.
	LiveRender LiveMessageType = "render"
	LiveError  LiveMessageType = "error"
)

// LiveMessage is exchanged as JSON over the live websocket.
type LiveMessage struct {
	Type  LiveMessageType `json:"type"`
	Path  string          `json:"path,omitempty"`
	HTML  string          `json:"html,omitempty"`
	Error string          `json:"error,omitempty"`
}

const liveWriteTimeout = 10 * time.Second

// liveHub tracks the open live sessions.
type liveHub struct {
	app      *App
	upgrader websocket.Upgrader
	renderer *render.Renderer

	mu       sync.Mutex
	sessions map[*liveSession]struct{}
}

func newLiveHub(a *App) *liveHub {
	h := &liveHub{
		app:      a,
		renderer: render.NewRenderer(render.RendererConfig{OmitMarkers: true}),
		sessions: make(map[*liveSession]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if a.config.DevMode {
		h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return h
}

// ServeHTTP upgrades the request and runs a router for the connection
// until either side closes it. The "path" query parameter selects the
// first path.
func (h *liveHub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &liveSession{
		hub:    h,
		conn:   conn,
		cancel: cancel,
		loc:    location.NewMemory(req.URL.Query().Get("path")),
		mount:  vdom.NewMount(),
		kick:   make(chan struct{}, 1),
	}
	h.add(s)
	defer h.remove(s)

	s.run(ctx)
}

func (h *liveHub) add(s *liveSession) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
}

func (h *liveHub) remove(s *liveSession) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

func (h *liveHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *liveHub) close() {
	h.mu.Lock()
	sessions := make([]*liveSession, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.conn.Close()
	}
}

// liveSession is one websocket with its own router and mount.
type liveSession struct {
	hub    *liveHub
	conn   *websocket.Conn
	cancel context.CancelFunc
	loc    *location.Memory
	mount  *vdom.Mount
	router *router.Router

	mu      sync.Mutex
	pending []LiveMessage
	kick    chan struct{}
}

func (s *liveSession) run(ctx context.Context) {
	a := s.hub.app
	opts := []router.Option{
		router.WithLogger(a.config.Logger),
		router.WithParamChange(a.config.ParamChange),
		router.WithErrorHandler(func(err error, c component.Component) {
			s.send(LiveMessage{Type: LiveError, Path: s.loc.Path(), Error: err.Error()})
		}),
	}
	if a.recorder != nil {
		opts = append(opts, router.WithRecorder(a.recorder))
	}
	if a.config.Tracer != nil {
		opts = append(opts, router.WithTracer(a.config.Tracer))
	}
	if a.config.NotFound != nil {
		opts = append(opts, router.WithNotFound(a.config.NotFound))
	}
	s.router = router.New(a.tree, s.loc, opts...)
	s.mount.Observe(s.rendered)

	hosted := make(chan struct{})
	go func() {
		defer close(hosted)
		s.router.Host(ctx, s.mount)
	}()
	written := make(chan struct{})
	go func() {
		defer close(written)
		s.writeLoop(ctx)
	}()

	a.config.Logger.Debug("live session opened", "path", s.loc.Path())
	s.readLoop()

	s.cancel()
	<-hosted
	<-written
	s.conn.Close()
	a.config.Logger.Debug("live session closed")
}

func (s *liveSession) readLoop() {
	for {
		var msg LiveMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case LiveNavigate:
			if err := s.router.Navigate(msg.Path, nil); err != nil {
				s.send(LiveMessage{Type: LiveError, Path: msg.Path, Error: err.Error()})
			}
		case LiveBack:
			s.loc.Back()
		case LiveForward:
			s.loc.Forward()
		}
	}
}

// rendered runs after every mount mutation.
func (s *liveSession) rendered(root *vdom.VNode) {
	html, err := s.hub.renderer.RenderToString(root)
	if err != nil {
		s.send(LiveMessage{Type: LiveError, Error: err.Error()})
		return
	}
	s.send(LiveMessage{Type: LiveRender, Path: s.loc.Path(), HTML: html})
}

// send queues msg. A queued render is superseded by a newer one.
func (s *liveSession) send(msg LiveMessage) {
	s.mu.Lock()
	if n := len(s.pending); msg.Type == LiveRender && n > 0 && s.pending[n-1].Type == LiveRender {
		s.pending[n-1] = msg
	} else {
		s.pending = append(s.pending, msg)
	}
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *liveSession) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		}

		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, msg := range batch {
			s.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.conn.Close()
				return
			}
		}
	}
}

// liveScript connects a served page to the live channel: link clicks and
// history moves become navigate messages and render messages replace the
// page root.
const liveScript = `
(function() {
    'use strict';

    var root = document.getElementById('vldom-root');
    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;

    function send(msg) {
        if (ws && ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(msg));
        }
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/_vldom/live?path=' + encodeURIComponent(location.pathname));

        ws.onopen = function() {
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'render':
                    root.innerHTML = msg.html;
                    if (msg.path && msg.path !== location.pathname) {
                        history.pushState({}, '', msg.path);
                    }
                    break;

                case 'error':
                    console.error('[vldom]', msg.path || '', msg.error);
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    document.addEventListener('click', function(e) {
        var a = e.target.closest('a[href^="/"]');
        if (!a || e.metaKey || e.ctrlKey || e.shiftKey) {
            return;
        }
        e.preventDefault();
        send({type: 'navigate', path: a.getAttribute('href')});
    });

    window.addEventListener('popstate', function() {
        send({type: 'navigate', path: location.pathname});
    });

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
`
