package api

import (
	"context"
	"net/http"
	"strings"

	"ContestSync/internal/model"
	"ContestSync/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContestFinder 比赛列表查询
type ContestFinder interface {
	FindContests(ctx context.Context, filter repository.ContestFilter) ([]*model.Contest, error)
}

// ContestHandler 提供给前端的比赛查询接口
type ContestHandler struct {
	repo   ContestFinder
	logger *logrus.Logger
}

func NewContestHandler(repo ContestFinder, logger *logrus.Logger) *ContestHandler {
	return &ContestHandler{repo: repo, logger: logger}
}

// ListContests 比赛列表，按开始时间升序
// GET /api/contests?platform=codeforces,leetcode&status=upcoming
func (h *ContestHandler) ListContests(c *gin.Context) {
	var filter repository.ContestFilter
	if raw := strings.TrimSpace(c.Query("platform")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			p, ok := model.ParsePlatform(part)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform: " + part})
				return
			}
			filter.Platforms = append(filter.Platforms, string(p))
		}
	}

	switch status := strings.ToLower(strings.TrimSpace(c.Query("status"))); status {
	case "":
	case string(model.StatusUpcoming), string(model.StatusOngoing), string(model.StatusPast):
		filter.Status = status
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be upcoming, ongoing or past"})
		return
	}

	contests, err := h.repo.FindContests(c.Request.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("ListContests failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if contests == nil {
		contests = []*model.Contest{}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(contests), "contests": contests})
}
