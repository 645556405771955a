package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hibiken/asynq"

	"marketplace-backend/internal/domains/settlement/model"
	"marketplace-backend/internal/domains/settlement/report"
	"marketplace-backend/internal/domains/settlement/repository"
	"marketplace-backend/internal/shared"
	"marketplace-backend/internal/shared/response"
	"marketplace-backend/pkg/logger"
)

// jobRoute maps an external job name to its task type and queue.
type jobRoute struct {
	taskType string
	queue    string
}

var jobRoutes = map[string]jobRoute{
	"create_per_transaction": {shared.TypeSettlementCreate, shared.QueueCritical},
	"aggregate_daily":        {shared.TypeSettlementAggregateDay, shared.QueueSettlement},
	"aggregate_weekly":       {shared.TypeSettlementAggregateWeek, shared.QueueSettlement},
	"aggregate_monthly":      {shared.TypeSettlementAggregateMon, shared.QueueSettlement},
	"aggregate_yearly":       {shared.TypeSettlementAggregateYear, shared.QueueSettlement},
	"complete_sweep":         {shared.TypeSettlementCompleteSweep, shared.QueueDefault},
}

// TriggerJobRequest is the body of a manual job trigger. TargetDate overrides
// the schedule-relative period for aggregation jobs.
type TriggerJobRequest struct {
	TargetDate string `json:"target_date,omitempty"`
}

func (req TriggerJobRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.TargetDate, validation.Date("2006-01-02")),
	)
}

type SettlementHandler struct {
	settlements repository.RepositoryInterface
	exporter    *report.Exporter
	client      *asynq.Client
}

func NewSettlementHandler(settlements repository.RepositoryInterface, exporter *report.Exporter, client *asynq.Client) *SettlementHandler {
	return &SettlementHandler{
		settlements: settlements,
		exporter:    exporter,
		client:      client,
	}
}

func (h *SettlementHandler) RegisterRoutes(router *gin.RouterGroup) {
	settlements := router.Group("/settlements")
	{
		settlements.POST("/jobs/:name", h.TriggerJob)
		settlements.GET("/daily", h.ListDaily)
		settlements.GET("/weekly", h.ListWeekly)
		settlements.GET("/monthly", h.ListMonthly)
		settlements.GET("/yearly", h.ListYearly)
		settlements.GET("/reports/monthly", h.ExportMonthlyReport)
	}
}

// TriggerJob enqueues a settlement job out of schedule. The worker still
// takes the per-job run lock, so a manual trigger cannot overlap a cron run.
func (h *SettlementHandler) TriggerJob(c *gin.Context) {
	route, ok := jobRoutes[c.Param("name")]
	if !ok {
		response.NotFound(c, fmt.Sprintf("unknown settlement job %q", c.Param("name")))
		return
	}

	var req TriggerJobRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	payload, err := json.Marshal(shared.SettlementJobPayload{
		Trigger: shared.BatchTrigger{
			FiredAt:       time.Now().UTC(),
			ExecutionType: "manual",
			TargetDate:    req.TargetDate,
		},
	})
	if err != nil {
		response.InternalServerError(c, "failed to build task payload")
		return
	}

	info, err := h.client.EnqueueContext(c.Request.Context(),
		asynq.NewTask(route.taskType, payload),
		asynq.Queue(route.queue),
		asynq.MaxRetry(1),
	)
	if err != nil {
		logger.Error("failed to enqueue settlement job", err)
		response.InternalServerError(c, "failed to enqueue job")
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"task_id": info.ID,
		"queue":   info.Queue,
		"type":    info.Type,
	})
}

// ListDaily returns every brand's daily aggregate for one date.
func (h *SettlementHandler) ListDaily(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	dailies, err := h.settlements.ListDailyByDate(c.Request.Context(), date)
	if err != nil {
		logger.Error("failed to list daily settlements", err)
		response.InternalServerError(c, "failed to list daily settlements")
		return
	}

	response.Success(c, http.StatusOK, dailies)
}

// ListWeekly returns every brand's weekly aggregates for one year/month.
func (h *SettlementHandler) ListWeekly(c *gin.Context) {
	year, month, ok := h.yearMonth(c)
	if !ok {
		return
	}

	weeklies, err := h.settlements.ListWeeklyByPeriod(c.Request.Context(), year, month)
	if err != nil {
		logger.Error("failed to list weekly settlements", err)
		response.InternalServerError(c, "failed to list weekly settlements")
		return
	}

	response.Success(c, http.StatusOK, weeklies)
}

// ListMonthly returns every brand's monthly aggregate for one year/month.
func (h *SettlementHandler) ListMonthly(c *gin.Context) {
	year, month, ok := h.yearMonth(c)
	if !ok {
		return
	}

	monthlies, err := h.settlements.ListMonthlyByPeriod(c.Request.Context(), year, month)
	if err != nil {
		logger.Error("failed to list monthly settlements", err)
		response.InternalServerError(c, "failed to list monthly settlements")
		return
	}

	response.Success(c, http.StatusOK, monthlies)
}

// ListYearly returns every brand's yearly aggregate for one year.
func (h *SettlementHandler) ListYearly(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 {
		response.BadRequest(c, "year must be a four-digit year")
		return
	}

	yearlies, err := h.settlements.ListYearlyByYear(c.Request.Context(), year)
	if err != nil {
		logger.Error("failed to list yearly settlements", err)
		response.InternalServerError(c, "failed to list yearly settlements")
		return
	}

	response.Success(c, http.StatusOK, yearlies)
}

// ExportMonthlyReport streams the monthly settlement statement as an xlsx
// workbook.
func (h *SettlementHandler) ExportMonthlyReport(c *gin.Context) {
	year, month, ok := h.yearMonth(c)
	if !ok {
		return
	}

	f, err := h.exporter.ExportMonthly(c.Request.Context(), year, month)
	if err != nil {
		if errors.Is(err, model.ErrNoSettlementData) {
			response.NotFound(c, "no settlement data for the requested period")
			return
		}
		logger.Error("failed to export monthly settlement report", err)
		response.InternalServerError(c, "failed to export report")
		return
	}

	filename := fmt.Sprintf("settlement-monthly-%04d-%02d.xlsx", year, month)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		logger.Error("failed to stream monthly settlement report", err)
	}
}

func (h *SettlementHandler) yearMonth(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 {
		response.BadRequest(c, "year must be a four-digit year")
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(c, "month must be 1-12")
		return 0, 0, false
	}
	return year, month, true
}
