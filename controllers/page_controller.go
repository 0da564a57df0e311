package controllers

import (
	"errors"
	"net/http"

	"debatearena/internal/debate"
	"debatearena/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Page handlers back the server-rendered UI. Every form post redirects to "/";
// failures are already recorded on the session or are harmless double submits.

func (ctl *DebateController) Page(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, views.PageTemplate, views.NewPage(m.Snapshot()))
}

func (ctl *DebateController) redirect(c *gin.Context, m *debate.Machine, err error) {
	if err != nil && !errors.Is(err, debate.ErrValidation) {
		ctl.log.Debug("form action ignored", zap.String("session", m.ID()), zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (ctl *DebateController) PostTopic(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	var req TopicRequest
	_ = c.ShouldBind(&req)
	ctl.redirect(c, m, applyTopic(m, req))
}

func (ctl *DebateController) PostStart(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	var req TopicRequest
	_ = c.ShouldBind(&req)
	if err := applyTopic(m, req); err != nil {
		ctl.redirect(c, m, err)
		return
	}
	ctl.redirect(c, m, m.StartDebate())
}

func (ctl *DebateController) PostMessage(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	var req MessageRequest
	_ = c.ShouldBind(&req)
	call, err := m.SendMessage(req.Text)
	ctl.launch(call)
	ctl.redirect(c, m, err)
}

func (ctl *DebateController) PostEnd(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	call, err := m.EndDebate()
	ctl.launch(call)
	ctl.redirect(c, m, err)
}

func (ctl *DebateController) PostMap(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	call, err := m.BuildArgumentMap()
	ctl.launch(call)
	ctl.redirect(c, m, err)
}

func (ctl *DebateController) PostNew(c *gin.Context) {
	m, ok := currentSession(c)
	if !ok {
		return
	}
	m.NewDebate()
	ctl.redirect(c, m, nil)
}
