package server

import (
	"encoding/json"
	"net/http"

	"musichub/core/player"
	"musichub/logger"
	"musichub/model"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the envelope for every frame in both directions.
type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsDevice drives the audio element living in the client. Control
// frames go out over the session connection; the client answers with
// device event frames that the read loop feeds back into the engine.
type wsDevice struct {
	conn *websocket.Conn
}

func (d *wsDevice) Load(url string) {
	d.send("load", map[string]string{"url": url})
}

func (d *wsDevice) Play() error {
	return d.conn.WriteJSON(&wsMessage{Type: "play"})
}

func (d *wsDevice) Pause() {
	d.send("pause", nil)
}

func (d *wsDevice) Seek(seconds float64) {
	d.send("seek", map[string]float64{"seconds": seconds})
}

func (d *wsDevice) send(msgType string, payload interface{}) {
	msg := &wsMessage{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			logger.Error("Failed to marshal device command", logger.ErrorField(err))
			return
		}
		msg.Payload = raw
	}
	if err := d.conn.WriteJSON(msg); err != nil {
		logger.Warn("Failed to send device command",
			logger.String("type", msgType),
			logger.ErrorField(err),
		)
	}
}

// playerSession holds the per-connection playback state. All engine and
// library calls happen on the read loop goroutine, so the session needs
// no locking.
type playerSession struct {
	conn      *websocket.Conn
	engine    *player.Engine
	library   *player.Library
	selection *player.Selection
	userID    int64
}

// PlayerSessionHandler upgrades the connection and runs a playback
// session for the authenticated account. Browsers cannot set headers on
// websocket requests, so the token travels in the query string.
func (h *APIHandler) PlayerSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := h.signer.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	device := &wsDevice{conn: conn}

	session := &playerSession{
		conn:      conn,
		userID:    claims.UserID,
		library:   player.NewLibrary(newRepoProvider(claims.UserID, h)),
		selection: player.NewSelection(),
	}
	session.engine = player.NewEngine(device,
		player.WithSnapshotStore(h.playerCache, claims.UserID),
		player.WithErrorHandler(func(err error) {
			session.send("playbackError", map[string]string{"message": err.Error()})
		}),
	)

	if err := session.library.Refresh(ctx); err != nil {
		logger.Error("Failed to load library for session",
			logger.Int64("userId", claims.UserID),
			logger.ErrorField(err),
		)
		session.send("error", map[string]string{"message": "Failed to load library"})
		return
	}
	session.sendLibrary()

	// 恢复上次的播放进度
	if err := session.engine.Restore(ctx); err != nil {
		logger.Debug("No playback state restored",
			logger.Int64("userId", claims.UserID),
			logger.ErrorField(err),
		)
	}
	session.sendState()

	logger.Info("Player session started", logger.Int64("userId", claims.UserID))
	session.run(r)

	// Final snapshot so a reconnect resumes where the tab closed.
	if song := session.engine.Current(); song != nil {
		snap := &model.PlayerSnapshot{
			Song:      song,
			Position:  session.engine.Position(),
			IsPlaying: false,
		}
		if err := h.playerCache.Save(ctx, claims.UserID, snap); err != nil {
			logger.Warn("Failed to save final player state",
				logger.Int64("userId", claims.UserID),
				logger.ErrorField(err),
			)
		}
	}
	logger.Info("Player session closed", logger.Int64("userId", claims.UserID))
}

func (s *playerSession) run(r *http.Request) {
	ctx := r.Context()

	for {
		var msg wsMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Player session read failed", logger.ErrorField(err))
			}
			return
		}

		switch msg.Type {
		// ---- playback commands ----
		case "play":
			s.handlePlay(msg.Payload)
		case "toggle":
			s.engine.TogglePlayPause()
		case "seek":
			var p struct {
				Percent float64 `json:"percent"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				s.engine.Seek(p.Percent)
			}
		case "next":
			s.engine.PlayNext()
		case "prev":
			s.engine.PlayPrevious()

		// ---- device events from the client audio element ----
		case "playStarted":
			s.engine.HandlePlayStarted()
		case "paused":
			s.engine.HandlePaused()
		case "ended":
			s.engine.HandleEnded()
		case "timeUpdate":
			var p struct {
				Seconds float64 `json:"seconds"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				s.engine.HandleTimeUpdate(p.Seconds)
			}
		case "metadata":
			var p struct {
				Duration float64 `json:"duration"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				s.engine.HandleMetadataLoaded(p.Duration)
			}
		case "deviceError":
			var p struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				s.engine.HandleError(deviceError(p.Message))
			}

		// ---- library mutations ----
		case "toggleLike":
			var p struct {
				SongID int64 `json:"songId"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				if err := s.library.ToggleLike(ctx, s.findSong(p.SongID)); err != nil {
					s.send("error", map[string]string{"message": "Failed to toggle like"})
				}
				s.sendLibrary()
			}
		case "createPlaylist":
			var p struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				if _, err := s.library.CreatePlaylist(ctx, p.Name); err != nil {
					s.send("error", map[string]string{"message": "Failed to create playlist"})
				}
				s.sendLibrary()
			}
		case "removeFromPlaylist":
			var p struct {
				PlaylistID string `json:"playlistId"`
				SongID     int64  `json:"songId"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				if err := s.library.RemoveFromPlaylist(ctx, p.PlaylistID, p.SongID); err != nil {
					s.send("error", map[string]string{"message": "Failed to remove song"})
				}
				s.sendLibrary()
			}
		case "deletePlaylist":
			var p struct {
				PlaylistID string `json:"playlistId"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				if err := s.library.DeletePlaylist(ctx, p.PlaylistID); err != nil {
					s.send("error", map[string]string{"message": "Failed to delete playlist"})
				}
				s.sendLibrary()
			}

		// ---- add-to-playlist workflow ----
		case "selectionOpen":
			var p struct {
				SongID int64 `json:"songId"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				s.selection.Open(s.findSong(p.SongID))
			}
		case "selectionToggle":
			var p struct {
				SongID int64 `json:"songId"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				s.selection.Toggle(s.findSong(p.SongID))
			}
		case "selectionTarget":
			var p struct {
				PlaylistID string `json:"playlistId"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil {
				s.selection.SetTarget(p.PlaylistID)
			}
		case "selectionApply":
			if err := s.selection.Apply(ctx, s.library); err != nil {
				s.send("error", map[string]string{"message": "Failed to add songs to playlist"})
			}
			s.sendLibrary()
		case "selectionClose":
			s.selection.Close()

		default:
			logger.Debug("Unknown session message", logger.String("type", msg.Type))
		}

		s.sendState()
	}
}

// handlePlay starts a track with provenance taken from where the user
// clicked it: the catalog, the liked list or one of their playlists.
func (s *playerSession) handlePlay(payload json.RawMessage) {
	var p struct {
		SongID     int64  `json:"songId"`
		Source     string `json:"source"`
		PlaylistID string `json:"playlistId"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		s.send("error", map[string]string{"message": "Invalid play command"})
		return
	}

	var queue player.Queue
	switch p.Source {
	case "playlist":
		pl := s.library.PlaylistByID(p.PlaylistID)
		if pl == nil {
			s.send("error", map[string]string{"message": "Playlist not found"})
			return
		}
		queue = player.NewPlaylistQueue(pl.ID, pl.Songs)
	case "liked":
		queue = player.NewCatalogQueue(s.library.Liked())
	default:
		queue = player.NewCatalogQueue(s.library.Catalog())
	}

	song := s.findSong(p.SongID)
	if song == nil {
		s.send("error", map[string]string{"message": "Song not found"})
		return
	}

	if err := s.engine.Play(song, &queue); err != nil {
		logger.Warn("Play failed",
			logger.Int64("songId", p.SongID),
			logger.ErrorField(err),
		)
	}
}

func (s *playerSession) findSong(id int64) *model.Song {
	for _, song := range s.library.Catalog() {
		if song.ID == id {
			return song
		}
	}
	return nil
}

// sendState pushes the playback state after every processed frame so
// the client never has to derive it.
func (s *playerSession) sendState() {
	current := s.engine.Current()
	state := map[string]interface{}{
		"song":      current,
		"isPlaying": s.engine.IsPlaying(),
		"position":  s.engine.Position(),
		"duration":  s.engine.Duration(),
		"progress":  s.engine.Progress(),
	}
	s.send("state", state)
}

func (s *playerSession) sendLibrary() {
	s.send("library", map[string]interface{}{
		"songs":     s.library.Catalog(),
		"liked":     s.library.Liked(),
		"playlists": s.library.Playlists(),
	})
}

func (s *playerSession) send(msgType string, payload interface{}) {
	msg := &wsMessage{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			logger.Error("Failed to marshal session message", logger.ErrorField(err))
			return
		}
		msg.Payload = raw
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		logger.Warn("Failed to send session message",
			logger.String("type", msgType),
			logger.ErrorField(err),
		)
	}
}

// deviceError wraps a client-reported media error as an error value.
type deviceError string

func (e deviceError) Error() string {
	return string(e)
}
