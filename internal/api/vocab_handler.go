package api

import (
	"net/http"

	"github.com/vocab-srs/vocab-api/internal/api/shared"
	"github.com/vocab-srs/vocab-api/internal/service"
)

// CreateVocabRequest represents the request body for creating a vocab entry.
// Field names match the sync wire format.
type CreateVocabRequest struct {
	Term         string              `json:"term" validate:"required,min=1"`
	Meanings     []string            `json:"meanings"`
	IPA          string              `json:"ipa"`
	ExampleEn    string              `json:"exampleEn"`
	ExampleVi    string              `json:"exampleVi"`
	Mnemonic     string              `json:"mnemonic"`
	Tags         []string            `json:"tags"`
	Collocations []string            `json:"collocations"`
	Phrases      []string            `json:"phrases"`
	WordFamily   map[string][]string `json:"wordFamily"`
	Topics       []string            `json:"topics"`
	CEFRLevel    string              `json:"cefrLevel"`
	IELTSBand    *float64            `json:"ieltsBand"`
}

// VocabHandler handles vocab-related HTTP requests
type VocabHandler struct {
	vocabService *service.VocabService
}

// NewVocabHandler creates a new VocabHandler
func NewVocabHandler(vocabService *service.VocabService) *VocabHandler {
	return &VocabHandler{
		vocabService: vocabService,
	}
}

// CreateVocab handles POST /api/vocab requests. A duplicate term is not an
// error: the entry is merged and its scheduling state reset (re-add).
func (h *VocabHandler) CreateVocab(w http.ResponseWriter, r *http.Request) {
	var req CreateVocabRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: term is required")
		return
	}

	result, err := h.vocabService.Create(r.Context(), service.CreateVocabInput{
		Term:         req.Term,
		Meanings:     req.Meanings,
		IPA:          req.IPA,
		ExampleEn:    req.ExampleEn,
		ExampleVi:    req.ExampleVi,
		Mnemonic:     req.Mnemonic,
		Tags:         req.Tags,
		Collocations: req.Collocations,
		Phrases:      req.Phrases,
		WordFamily:   req.WordFamily,
		Topics:       req.Topics,
		CEFRLevel:    req.CEFRLevel,
		IELTSBand:    req.IELTSBand,
	})
	if err != nil {
		status, message := mapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	status := http.StatusCreated
	if result.ReAdded {
		status = http.StatusOK
	}
	shared.RespondWithJSON(w, r, status, result.Vocab)
}
