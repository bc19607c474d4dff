package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"qrattend/internal/cloudinary"
	"qrattend/internal/metrics"
	"qrattend/internal/queue"
	"qrattend/internal/session"
)

// Handler exposes the session manager and submission gate over JSON. The
// admin routes carry no authentication: any caller may manage sessions.
type Handler struct {
	mgr     *session.Manager
	gate    *session.Gate
	cloud   *cloudinary.Client // nil if Cloudinary not configured
	cleanup queue.Queue        // nil if no cleanup queue is wired
	baseURL string
}

// New creates a handler. cloud and cleanup may be nil.
func New(mgr *session.Manager, gate *session.Gate, cloud *cloudinary.Client, cleanup queue.Queue, baseURL string) *Handler {
	return &Handler{mgr: mgr, gate: gate, cloud: cloud, cleanup: cleanup, baseURL: baseURL}
}

// Routes mounts all endpoints on the engine.
func (h *Handler) Routes(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.GET("/sessions", h.ListSessions)
	v1.POST("/sessions", h.CreateSession)
	v1.GET("/sessions/:id", h.GetSession)
	v1.PATCH("/sessions/:id", h.UpdateSession)
	v1.DELETE("/sessions/:id", h.DeleteSession)
	v1.GET("/sessions/:id/attendees", h.ListAttendees)
	v1.POST("/attend/:sessionId", h.SubmitAttendance)
	v1.DELETE("/attendees/:id", h.RemoveAttendee)
}

// sessionView augments a session with the fields the dashboard and the QR
// renderer consume.
type sessionView struct {
	session.Session
	Expired   bool   `json:"expired"`
	AttendURL string `json:"attend_url"`
}

func (h *Handler) view(s session.Session) sessionView {
	return sessionView{
		Session:   s,
		Expired:   s.Expired(time.Now()),
		AttendURL: session.AttendURL(h.baseURL, s.ID),
	}
}

// ---------- Sessions ----------

func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.mgr.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, h.view(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": views})
}

type createSessionRequest struct {
	Title     string    `json:"title"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.mgr.Create(c.Request.Context(), req.Title, req.ExpiresAt)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.SessionsCreated.Inc()
	c.JSON(http.StatusCreated, h.view(s))
}

func (h *Handler) GetSession(c *gin.Context) {
	s, err := h.mgr.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, h.view(*s))
}

func (h *Handler) UpdateSession(c *gin.Context) {
	var upd session.SessionUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.mgr.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(s))
}

func (h *Handler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.mgr.Delete(c.Request.Context(), id); err != nil {
		var se *session.StorageError
		if errors.As(err, &se) && h.cleanup != nil {
			// The cascade may have stopped partway; let the worker retry it.
			if qerr := h.cleanup.Publish(c.Request.Context(), queue.Message{Type: queue.TypePurge, Body: []byte(id)}); qerr != nil {
				log.Printf("cleanup publish failed for session %s: %v", id, qerr)
			}
		}
		h.fail(c, err)
		return
	}
	metrics.SessionsDeleted.Inc()
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAttendees(c *gin.Context) {
	id := c.Param("id")
	s, err := h.mgr.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	attendees, err := h.mgr.Attendees(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if attendees == nil {
		attendees = []session.Attendee{}
	}
	c.JSON(http.StatusOK, gin.H{"attendees": attendees})
}

// ---------- Attendance ----------

func (h *Handler) SubmitAttendance(c *gin.Context) {
	var sub session.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub.Signature = h.offloadSignature(sub.Signature)

	a, err := h.gate.Submit(c.Request.Context(), c.Param("sessionId"), sub)
	if err != nil {
		var ve *session.ValidationError
		switch {
		case errors.Is(err, session.ErrSessionExpired):
			metrics.SubmissionsRejected.WithLabelValues(metrics.ReasonExpired).Inc()
		case errors.Is(err, session.ErrSessionNotFound):
			metrics.SubmissionsRejected.WithLabelValues(metrics.ReasonNotFound).Inc()
		case errors.As(err, &ve):
			metrics.SubmissionsRejected.WithLabelValues(metrics.ReasonInvalid).Inc()
		}
		h.fail(c, err)
		return
	}
	metrics.SubmissionsAccepted.Inc()
	c.JSON(http.StatusCreated, a)
}

// offloadSignature swaps a data-URL signature for a hosted URL when
// Cloudinary is configured. On any upload failure the raw payload is kept
// and the submission proceeds.
func (h *Handler) offloadSignature(sig string) string {
	if h.cloud == nil || !strings.HasPrefix(sig, "data:") {
		return sig
	}
	result, err := h.cloud.UploadDataURL(sig)
	if err != nil {
		log.Printf("signature upload failed, storing inline: %v", err)
		return sig
	}
	return result.SecureURL
}

func (h *Handler) RemoveAttendee(c *gin.Context) {
	if err := h.gate.RemoveAttendee(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Error mapping ----------

// fail translates the core error taxonomy to HTTP. Storage detail is logged
// for operators and never echoed to the client.
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *session.ValidationError
	var se *session.StorageError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"errors":  ve.Fields,
			"message": "please check your input and try again",
		})
	case errors.Is(err, session.ErrSessionExpired), errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusGone, gin.H{"error": session.TerminalMessage})
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &se):
		log.Printf("storage failure: %v", se)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		log.Printf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
