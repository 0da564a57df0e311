package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"debatearena/internal/debate"
	"debatearena/locale"
	"debatearena/middlewares"
	"debatearena/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TopicRequest updates the topic screen. Absent fields are left unchanged.
type TopicRequest struct {
	Topic       *string `json:"topic" form:"topic"`
	CustomTopic *string `json:"customTopic" form:"customTopic"`
	Stance      *string `json:"stance" form:"stance"`
	Lang        *string `json:"lang" form:"lang"`
}

type MessageRequest struct {
	Text string `json:"text" form:"text"`
}

// DebateController serves the session API. Model calls started by a request run
// in the background and finish after the response is written.
type DebateController struct {
	log         *zap.Logger
	callTimeout time.Duration
}

func NewDebateController(callTimeout time.Duration, log *zap.Logger) *DebateController {
	if log == nil {
		log = zap.NewNop()
	}
	return &DebateController{log: log, callTimeout: callTimeout}
}

func (ctl *DebateController) launch(call *debate.Call) {
	if call == nil {
		return
	}
	go func() {
		ctx, cancel := ctl.callContext()
		defer cancel()
		// Run records failures on the session and logs them.
		_ = call.Run(ctx)
	}()
}

// callContext is detached from the request, so a closed tab does not cancel the call.
func (ctl *DebateController) callContext() (context.Context, context.CancelFunc) {
	if ctl.callTimeout > 0 {
		return context.WithTimeout(context.Background(), ctl.callTimeout)
	}
	return context.WithCancel(context.Background())
}

func currentSession(c *gin.Context) (*debate.Machine, bool) {
	m, ok := middlewares.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return nil, false
	}
	return m, true
}

// applyTopic copies the present fields of req onto the topic screen.
func applyTopic(m *debate.Machine, req TopicRequest) error {
	if req.Lang != nil {
		lang := locale.Parse(*req.Lang, "")
		if lang == "" {
			return fmt.Errorf("%w: unsupported language %q", debate.ErrValidation, *req.Lang)
		}
		if err := m.SelectLanguage(lang); err != nil {
			return err
		}
	}
	if req.Topic != nil {
		if err := m.SelectTopic(strings.TrimSpace(*req.Topic)); err != nil {
			return err
		}
	}
	if req.CustomTopic != nil {
		if err := m.SetCustomTopic(*req.CustomTopic); err != nil {
			return err
		}
	}
	if req.Stance != nil {
		stance := models.ParseStance(*req.Stance)
		if stance == "" && strings.TrimSpace(*req.Stance) != "" {
			return fmt.Errorf("%w: unknown stance %q", debate.ErrValidation, *req.Stance)
		}
		if err := m.SelectStance(stance); err != nil {
			return err
		}
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, debate.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, debate.ErrBusy), errors.Is(err, debate.ErrWrongScreen):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (ctl *DebateController) fail(c *gin.Context, m *debate.Machine, err error) {
	s := m.Snapshot()
	msg := err.Error()
	switch {
	case errors.Is(err, debate.ErrBusy):
		msg = locale.For(locale.Lang(s.Lang)).Busy
	case errors.Is(err, debate.ErrValidation) && s.Error != "":
		msg = s.Error
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		ctl.log.Error("session action failed", zap.String("session", m.ID()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

// started answers 202 with the snapshot when call is pending, 200 otherwise.
func (ctl *DebateController) started(c *gin.Context, m *debate.Machine, call *debate.Call) {
	status := http.StatusOK
	if call != nil {
		status = http.StatusAccepted
	}
	snapshot := m.Snapshot()
	ctl.launch(call)
	c.JSON(status, snapshot)
}

func (ctl *DebateController) GetSession(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, m.Snapshot())
}

func (ctl *DebateController) UpdateTopic(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	if err := applyTopic(m, req); err != nil {
		ctl.fail(c, m, err)
		return
	}
	c.JSON(http.StatusOK, m.Snapshot())
}

// StartDebate accepts an optional TopicRequest body applied before starting.
func (ctl *DebateController) StartDebate(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	var req TopicRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
			return
		}
	}
	if err := applyTopic(m, req); err != nil {
		ctl.fail(c, m, err)
		return
	}
	if err := m.StartDebate(); err != nil {
		ctl.fail(c, m, err)
		return
	}
	c.JSON(http.StatusOK, m.Snapshot())
}

func (ctl *DebateController) SendMessage(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	call, err := m.SendMessage(req.Text)
	if err != nil {
		ctl.fail(c, m, err)
		return
	}
	ctl.started(c, m, call)
}

func (ctl *DebateController) EndDebate(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	call, err := m.EndDebate()
	if err != nil {
		ctl.fail(c, m, err)
		return
	}
	ctl.started(c, m, call)
}

func (ctl *DebateController) BuildArgumentMap(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	call, err := m.BuildArgumentMap()
	if err != nil {
		ctl.fail(c, m, err)
		return
	}
	ctl.started(c, m, call)
}

func (ctl *DebateController) NewDebate(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	m.NewDebate()
	c.JSON(http.StatusOK, m.Snapshot())
}
