package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vocab-srs/vocab-api/internal/api/shared"
	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/service/review"
)

// SubmitReviewRequest represents the request body for submitting a review.
type SubmitReviewRequest struct {
	CardID       string  `json:"cardId" validate:"required"`
	Mode         string  `json:"mode" validate:"required,oneof=flip mcq typing"`
	QuestionType string  `json:"questionType" validate:"required,oneof=term_to_meaning meaning_to_term"`
	Grade        int     `json:"grade" validate:"gte=0,lte=5"`
	UserAnswer   *string `json:"userAnswer"`
}

// ReviewHandler handles review submission HTTP requests
type ReviewHandler struct {
	reviewService *review.Service
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *review.Service) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// SubmitReview handles POST /api/review requests
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	resp, err := h.reviewService.Submit(r.Context(), review.Request{
		VocabID:      cardID,
		Mode:         domain.ReviewMode(req.Mode),
		QuestionType: domain.QuestionType(req.QuestionType),
		Grade:        req.Grade,
		UserAnswer:   req.UserAnswer,
	})
	if err != nil {
		status, message := mapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
