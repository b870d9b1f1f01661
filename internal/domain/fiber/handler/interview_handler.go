package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"interview-agent/internal/dto"
	"interview-agent/internal/middleware"
	"interview-agent/internal/repository"
	"interview-agent/internal/response"
	"interview-agent/internal/usecase"
	"interview-agent/internal/util"
)

type InterviewHandler struct {
	uc *usecase.InterviewUsecase
}

func NewInterviewHandler(uc *usecase.InterviewUsecase) *InterviewHandler {
	return &InterviewHandler{uc: uc}
}

func (h *InterviewHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/start_interview", middleware.RateLimiter(10, 1*time.Minute), h.StartInterview)
	app.Post("/answer_question", h.AnswerQuestion)
	app.Get("/status/:id", h.Status)
	app.Get("/sessions", h.Sessions)
	app.Get("/", h.Root)
}

func (h *InterviewHandler) StartInterview(c *fiber.Ctx) error {
	var req dto.StartInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	id, err := h.uc.StartInterview(req.JobDescription)
	if err != nil {
		if errors.Is(err, usecase.ErrBlankJobDescription) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: err.Error(),
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to start interview",
		}, err)
	}

	// The first question is generated in the background; clients poll
	// /status/:id until the session is ready.
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Interview started",
		Data:    dto.StartInterviewResponse{SessionID: id, Question: ""},
	})
}

func (h *InterviewHandler) AnswerQuestion(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	if err := h.uc.SubmitAnswer(req.SessionID, req.Question, req.Answer); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "Session not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to submit answer",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success submit answer",
		Data:    dto.AnswerResponse{Message: "evaluation_scheduled", SessionID: req.SessionID},
	})
}

func (h *InterviewHandler) Status(c *fiber.Ctx) error {
	id := c.Params("id")

	snap, err := h.uc.GetStatus(id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "Session not found",
		})
	}

	data := dto.StatusResponse{
		SessionID:  snap.ID,
		Status:     snap.Status,
		Question:   snap.Question,
		Error:      snap.Error,
		Evaluation: snap.Evaluation,
		Log:        snap.Log,
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get interview status",
		Data:    data,
	})
}

func (h *InterviewHandler) Sessions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 10)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	snapshots, total := h.uc.ListSessions(page, pageSize)

	summaries := make([]dto.SessionSummaryDTO, 0, len(snapshots))
	for _, snap := range snapshots {
		summaries = append(summaries, dto.SessionSummaryDTO{
			SessionID: snap.ID,
			Status:    snap.Status,
			Questions: len(snap.Questions),
			Answers:   len(snap.Answers),
			CreatedAt: snap.CreatedAt,
			UpdatedAt: snap.UpdatedAt,
		})
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	from, to := 0, 0
	if len(summaries) > 0 {
		from = (page-1)*pageSize + 1
		to = from + len(summaries) - 1
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success list sessions",
		Data:    summaries,
		Pagination: &response.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
			TotalItems: total,
			HasMore:    int64(page) < totalPages,
			From:       from,
			To:         to,
		},
	})
}

func (h *InterviewHandler) Root(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Welcome to AI Mock Interview Agent",
	})
}
