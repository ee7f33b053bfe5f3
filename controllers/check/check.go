package check

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

type AliveResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Info    CheckInfo `json:"info"`
}

type CheckInfo struct {
	Database   string         `json:"database"`
	Inference  InferenceInfo  `json:"inference"`
	Queues     map[string]int `json:"queue,omitempty"`
	RoutineNum int            `json:"routine_num"`
}

// InferenceInfo never carries the full key.
type InferenceInfo struct {
	Configured bool   `json:"configured"`
	Model      string `json:"model"`
	Key        string `json:"key,omitempty"`
}

type Inference interface {
	Configured() bool
	MaskedKey() string
	Model() string
}

type Queue interface {
	Connected() bool
	Reconnect() error
	QueueDepth() (map[string]int, error)
}

type CheckController struct {
	db        *gorm.DB
	inference Inference
	queue     Queue
	logger    *logrus.Entry
}

// NewCheckController accepts a nil queue when messaging is disabled.
func NewCheckController(db *gorm.DB, inference Inference, queue Queue, logger *logrus.Entry) *CheckController {
	return &CheckController{db: db, inference: inference, queue: queue, logger: logger}
}

// PingDatabase reports "ok" or the ping failure.
func (h *CheckController) PingDatabase() string {
	if h.db == nil {
		return "not initialised"
	}
	if err := h.db.DB().Ping(); err != nil {
		return err.Error()
	}
	return "ok"
}

func (h *CheckController) CheckAlive(c *gin.Context) {
	resMsg := "main thread alive"
	checkInfo := CheckInfo{Database: h.PingDatabase()}
	if checkInfo.Database != "ok" {
		resMsg = "database unreachable"
		h.logger.Error(fmt.Sprintf("database ping: %s", checkInfo.Database))
	}

	if h.inference != nil {
		checkInfo.Inference = InferenceInfo{
			Configured: h.inference.Configured(),
			Model:      h.inference.Model(),
			Key:        h.inference.MaskedKey(),
		}
		if !checkInfo.Inference.Configured {
			resMsg = "gemini api key missing"
			h.logger.Error(resMsg)
		}
	}

	if h.queue != nil {
		if !h.queue.Connected() {
			h.logger.Error("Api detect Connection lost, Reconnecting..")
			if err := h.queue.Reconnect(); err != nil {
				resMsg = fmt.Sprintf("reconnect rabbit fail: %s", err.Error())
				h.logger.Error(resMsg)
			}
		}
		depth, err := h.queue.QueueDepth()
		if err != nil {
			resMsg = err.Error()
			h.logger.Error(resMsg)
		} else {
			checkInfo.Queues = depth
		}
	}

	checkInfo.RoutineNum = runtime.NumGoroutine()
	h.logger.WithFields(logrus.Fields{"routine_num": checkInfo.RoutineNum}).Debug("health check")

	c.JSON(http.StatusOK, AliveResponse{Success: resMsg == "main thread alive", Message: resMsg, Info: checkInfo})
}
