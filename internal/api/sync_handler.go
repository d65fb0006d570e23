package api

import (
	"context"
	"errors"
	"net/http"

	"ContestSync/internal/model"
	"ContestSync/internal/repository"
	"ContestSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncTrigger 手动触发一次聚合
type SyncTrigger interface {
	Run(ctx context.Context) (*model.SyncStats, error)
}

// RunReader 读取最近一次运行记录
type RunReader interface {
	LatestRun(ctx context.Context) (*model.SyncRun, error)
}

type SyncHandler struct {
	trigger SyncTrigger
	runs    RunReader
	logger  *logrus.Logger
}

func NewSyncHandler(trigger SyncTrigger, runs RunReader, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		trigger: trigger,
		runs:    runs,
		logger:  logger,
	}
}

// RunSync 手动触发聚合
// @Summary 立即执行一次比赛聚合
// @Success 200 {object} model.SyncStats
// @Failure 409 {object} map[string]string 已有手动运行在进行
// @Failure 502 {object} map[string]string 所有来源都没有数据
// @Router /sync/run [post]
func (h *SyncHandler) RunSync(c *gin.Context) {
	// 客户端断开不应中断已开始的聚合
	stats, err := h.trigger.Run(context.WithoutCancel(c.Request.Context()))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, stats)
	case errors.Is(err, service.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrNoDataFromAnySource):
		h.logger.WithError(err).Error("手动聚合失败")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "stats": stats})
	default:
		h.logger.WithError(err).Error("手动聚合失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// LastRun 最近一次运行记录
// GET /sync/last
func (h *SyncHandler) LastRun(c *gin.Context) {
	run, err := h.runs.LatestRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoSyncRun) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no sync run yet"})
			return
		}
		h.logger.WithError(err).Error("LastRun failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
