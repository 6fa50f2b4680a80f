package live

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"readdit/internal/auth"
	"readdit/internal/logging"
	"readdit/internal/works"
	"readdit/pkg/models"
)

const maxMessageBytes = 64 << 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler serves the live work view: a client opens a work and receives
// its panels as they become ready.
type Handler struct {
	Hub       *Hub
	Engine    works.Engine
	Prefs     works.PrefsLoader
	CoversURL string
	Now       func() time.Time
}

func NewHandler(hub *Hub, engine works.Engine, prefs works.PrefsLoader, coversURL string) *Handler {
	return &Handler{Hub: hub, Engine: engine, Prefs: prefs, CoversURL: coversURL, Now: time.Now}
}

// Serve upgrades the request. Mount it behind auth.OptionalSession so a
// ?token= query ties the connection to a session.
func (h *Handler) Serve(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	ws.SetReadLimit(maxMessageBytes)

	cl := &conn{ws: ws, session: auth.SessionID(c)}
	h.Hub.add(cl)
	log := logging.With().Str("session", cl.session).Logger()
	log.Info().Msg("live client connected")

	_ = cl.send(NewEvent(EventWelcome, "", gin.H{
		"session":     cl.session != "",
		"connections": h.Hub.Stats().Connections,
	}))

	ctx, cancelAll := context.WithCancel(c.Request.Context())
	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc = func() {}
	)
	defer func() {
		cancelAll()
		wg.Wait()
		h.Hub.remove(cl)
		log.Info().Msg("live client disconnected")
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var in inbound
		if err := json.Unmarshal(msg, &in); err != nil {
			_ = cl.send(NewEvent(EventError, "", gin.H{"error": "invalid message"}))
			continue
		}
		if in.Type != "open" {
			_ = cl.send(NewEvent(EventError, "", gin.H{"error": "unknown message type " + in.Type}))
			continue
		}
		meta, ok := works.NormalizeMeta(in.Work)
		if !ok {
			_ = cl.send(NewEvent(EventError, "", gin.H{"error": "title required"}))
			continue
		}

		// A new work replaces whatever is still streaming.
		cancel()
		var sctx context.Context
		sctx, cancel = context.WithCancel(ctx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.stream(sctx, cl, meta)
		}()
	}
	cancel()
}

// stream sends the overview and the voices concurrently. Recommendations
// and facts wait for the voices so they see the community posts.
func (h *Handler) stream(ctx context.Context, cl *conn, meta models.WorkMeta) {
	emit := func(typ string, data any) {
		if ctx.Err() != nil {
			return
		}
		if err := cl.send(NewEvent(typ, meta.Title, data)); err != nil {
			logging.Debug().Err(err).Str("event", typ).Msg("live send failed")
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		emit(EventOverview, works.NewOverviewView(h.Engine.Overview(ctx, meta), h.CoversURL))
		return nil
	})
	g.Go(func() error {
		posts, ok := h.Engine.Voices(ctx, meta.Title)
		emit(EventVoices, works.NewVoicesView(meta.Title, posts, ok, h.Now()))

		var after errgroup.Group
		after.Go(func() error {
			prefs := works.LoadPrefs(ctx, h.Prefs, cl.session)
			emit(EventRecommendations, h.Engine.Recommend(ctx, meta, prefs))
			return nil
		})
		after.Go(func() error {
			emit(EventFacts, gin.H{"title": meta.Title, "items": h.Engine.FunFacts(ctx, meta)})
			return nil
		})
		return after.Wait()
	})
	_ = g.Wait()
	emit(EventDone, nil)
}
