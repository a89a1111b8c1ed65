package server

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/bgdnvk/hrassist/internal/agent"
	"github.com/bgdnvk/hrassist/internal/agent/model"
)

var validate = validator.New()

type askRequest struct {
	Question string `json:"question" validate:"max=4000"`
}

type askResponse struct {
	Answer      string           `json:"answer"`
	Confidence  int              `json:"confidence"`
	Intent      string           `json:"intent"`
	SubIntent   *string          `json:"subIntent"`
	Labels      []string         `json:"labels"`
	Learned     bool             `json:"learned"`
	Similarity  float64          `json:"similarity"`
	NLPFeatures model.FeatureSet `json:"nlpFeatures"`
	GithubLink  *string          `json:"github_link"`
	RequestID   string           `json:"requestId,omitempty"`
}

type historyResponse struct {
	UserID              string               `json:"userId"`
	LastIntent          *model.IntentMatch   `json:"lastIntent"`
	PendingConfirmation bool                 `json:"pendingConfirmation"`
	LastTopic           string               `json:"lastTopic,omitempty"`
	History             []model.HistoryEntry `json:"history"`
	LastUpdated         *time.Time           `json:"lastUpdated,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a question field"})
		return
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "question must be at most 4000 characters"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := callerIdentity(c)
	res := s.engine.Ask(c.Request.Context(), agent.Request{
		Question: req.Question,
		UserID:   id.EmpID,
		Role:     id.Role,
	})
	c.JSON(http.StatusOK, toAskResponse(res, c.GetString(requestIDKey)))
}

func (s *Server) handleHistory(c *gin.Context) {
	id := callerIdentity(c)
	conv, ok, err := s.engine.Sessions().Get(c.Request.Context(), id.EmpID)
	if err != nil {
		s.logger.Warn("history lookup failed", "user", id.EmpID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}

	resp := historyResponse{UserID: id.EmpID, History: []model.HistoryEntry{}}
	if ok {
		resp.LastIntent = conv.LastIntent
		resp.PendingConfirmation = conv.PendingConfirmation
		resp.LastTopic = conv.LastTopic
		if len(conv.History) > 0 {
			resp.History = conv.History
		}
		updated := conv.LastUpdated
		resp.LastUpdated = &updated
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleResetContext(c *gin.Context) {
	id := callerIdentity(c)
	if err := s.engine.Sessions().Reset(c.Request.Context(), id.EmpID); err != nil {
		s.logger.Warn("context reset failed", "user", id.EmpID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset conversation"})
		return
	}
	c.Status(http.StatusNoContent)
}

func toAskResponse(res agent.Result, requestID string) askResponse {
	resp := askResponse{
		Answer:      res.Answer.Text,
		Confidence:  int(math.Round(res.Match.Confidence * 100)),
		Intent:      res.Match.Intent,
		Labels:      res.Labels,
		Learned:     res.Learned,
		Similarity:  res.Similarity,
		NLPFeatures: res.Features,
		GithubLink:  res.Answer.Link,
		RequestID:   requestID,
	}
	if res.Match.Subtype != "" {
		sub := res.Match.Subtype
		resp.SubIntent = &sub
	}
	if resp.Labels == nil {
		resp.Labels = []string{}
	}
	return resp
}
