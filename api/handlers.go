package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/healthcore/errors"
	"github.com/skillsenselab/healthcore/validation"
	"github.com/skillsenselab/healthcore/version"
)

type handlers struct {
	deps Deps
}

func newHandlers(deps Deps) *handlers {
	return &handlers{deps: deps}
}

func (h *handlers) healthz(c *gin.Context) {
	RespondOK(c, gin.H{
		"status":  "ok",
		"version": version.Get().Version,
	})
}

func (h *handlers) allStatuses(c *gin.Context) {
	RespondOK(c, h.deps.Dashboard.AllStatuses())
}

func (h *handlers) statusFor(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ComponentID("id", id); err != nil {
		RespondWithError(c, err)
		return
	}
	snap, ok := h.deps.Dashboard.StatusFor(id)
	if !ok {
		RespondWithError(c, errors.NotFound("component status", id))
		return
	}
	RespondOK(c, snap)
}

func (h *handlers) graph(c *gin.Context) {
	body := gin.H{"graph": h.deps.Dashboard.Graph()}
	if h.deps.Registry != nil {
		if cycles := h.deps.Registry.FindCycles(); cycles != nil {
			body["cycles"] = cycles
		}
	}
	RespondOK(c, body)
}

// historyQuery bounds a history request. Zero values mean "from the
// beginning" and "until now".
type historyQuery struct {
	Since string `form:"since"`
	Until string `form:"until"`
}

func (h *handlers) history(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ComponentID("id", id); err != nil {
		RespondWithError(c, err)
		return
	}

	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondWithError(c, errors.InvalidInput("query", err.Error()))
		return
	}
	since, until, err := parseRange(q)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	RespondOK(c, h.deps.Dashboard.History(id, since, until))
}

func parseRange(q historyQuery) (time.Time, time.Time, error) {
	var since time.Time
	until := time.Now().UTC()

	if q.Since != "" {
		t, err := time.Parse(time.RFC3339, q.Since)
		if err != nil {
			return since, until, errors.InvalidInput("since", "must be RFC3339")
		}
		since = t
	}
	if q.Until != "" {
		t, err := time.Parse(time.RFC3339, q.Until)
		if err != nil {
			return since, until, errors.InvalidInput("until", "must be RFC3339")
		}
		until = t
	}
	return since, until, nil
}

func (h *handlers) alerts(c *gin.Context) {
	RespondOK(c, h.deps.Dashboard.Alerts())
}

func (h *handlers) points(c *gin.Context) {
	if h.deps.Points == nil {
		RespondOK(c, []any{})
		return
	}
	RespondOK(c, h.deps.Points.AllPoints())
}

func (h *handlers) integrationScore(c *gin.Context) {
	if h.deps.Monitor == nil {
		RespondWithError(c, errors.NotFound("integration monitor", ""))
		return
	}
	id := c.Param("id")
	if err := validation.ComponentID("id", id); err != nil {
		RespondWithError(c, err)
		return
	}

	score, err := h.deps.Monitor.HealthScore(id)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"integration": id,
		"score":       score,
		"pattern":     h.deps.Monitor.DetectFailurePatterns(id),
	})
}

func (h *handlers) integrationTransactions(c *gin.Context) {
	if h.deps.Monitor == nil {
		RespondWithError(c, errors.NotFound("integration monitor", ""))
		return
	}
	id := c.Param("id")
	if err := validation.ComponentID("id", id); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, h.deps.Monitor.Transactions(id))
}
