// Package server is the HTTP surface around the frame pipeline: the MJPEG
// video feed, the privacy and robot control APIs, and a websocket feed of
// the structured per-frame decisions. All decision logic lives below this
// layer.
package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"trailcam/pipeline"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

// CameraProbe reports whether the capture device is usable, for the
// health endpoint.
type CameraProbe interface {
	IsOpened() bool
}

// Server routes HTTP traffic onto the pipeline engine and the simulated
// robot state.
type Server struct {
	engine   *pipeline.Engine
	camera   CameraProbe
	robot    *RobotState
	hub      *decisionHub
	router   *mux.Router
	upgrader websocket.Upgrader
	tmpl     *template.Template
	log      *logrus.Entry
}

// New builds the server around an engine. The camera probe may be nil.
func New(engine *pipeline.Engine, cam CameraProbe, log *logrus.Logger) *Server {
	s := &Server{
		engine: engine,
		camera: cam,
		robot:  NewRobotState(),
		hub:    newDecisionHub(),
		router: mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		tmpl: template.Must(template.ParseFS(templateFS, "templates/dashboard.html")),
		log:  log.WithField("component", "server"),
	}

	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/video_feed", s.handleVideoFeed).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/decisions", s.handleDecisions)
	s.router.HandleFunc("/api/toggle_camera", s.handleToggleCamera).Methods(http.MethodPost)
	s.router.HandleFunc("/api/camera_control", s.handleCameraControl).Methods(http.MethodPost)
	s.router.HandleFunc("/api/control", s.handleControl).Methods(http.MethodPost)
	s.router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, nil); err != nil {
		s.log.WithError(err).Error("dashboard render failed")
	}
}

// handleVideoFeed streams the annotated pipeline output as MJPEG. Each
// connected client drives its own read of the shared engine; the engine
// serializes capture so concurrent feeds are safe.
func (s *Server) handleVideoFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := uuid.NewString()[:8]
	log := s.log.WithField("client", client)
	log.Info("video feed client connected")
	defer log.Info("video feed client disconnected")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, dec, err := s.engine.Frame()
		if err != nil {
			log.WithError(err).Error("frame encode failed")
			return
		}
		s.hub.Publish(dec)

		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame)); err != nil {
			return
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		if _, err := fmt.Fprint(w, "\r\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}

// handleDecisions upgrades to a websocket and pushes the structured
// decision data for every frame served on the video feed.
func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	client := uuid.NewString()[:8]
	log := s.log.WithField("client", client)
	log.Info("decision feed client connected")
	defer log.Info("decision feed client disconnected")

	decisions := s.hub.Subscribe(client)
	defer s.hub.Unsubscribe(client)

	// Drain client messages so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case dec := <-decisions:
			if err := conn.WriteJSON(dec); err != nil {
				return
			}
		}
	}
}

// toggleRequest mirrors the original control payloads: toggle_camera uses
// "run", camera_control uses "on".
type toggleRequest struct {
	Run *bool `json:"run"`
	On  *bool `json:"on"`
}

func (s *Server) handleToggleCamera(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	// A missing or invalid body means plain toggle.
	_ = json.NewDecoder(r.Body).Decode(&req)

	shouldRun := !s.engine.Running()
	if req.Run != nil {
		shouldRun = *req.Run
	}
	s.engine.SetRunning(shouldRun)

	s.log.WithField("running", shouldRun).Info("privacy toggle updated")
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"running": shouldRun,
	})
}

func (s *Server) handleCameraControl(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	shouldRun := true
	if req.On != nil {
		shouldRun = *req.On
	}
	s.engine.SetRunning(shouldRun)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "updated",
		"running": shouldRun,
	})
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	state := s.robot.Command(req.Action)
	s.log.WithField("action", req.Action).Info("robot command applied")
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"robot_state": state,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.robot.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"robot_state":      s.robot.Peek(),
		"camera_available": s.camera != nil && s.camera.IsOpened(),
		"privacy_running":  s.engine.Running(),
		"decision_clients": s.hub.Subscribers(),
		"pipeline":         s.engine.Stats().Snapshot(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("response encode failed")
	}
}
