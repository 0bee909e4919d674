package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// List godoc
// @Summary Матчи турнира
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param round query string false "ZONE, 32VOS, 16VOS, 8VOS, 4TOS, SEMIFINAL, FINAL"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var round *models.Round
	if raw := r.URL.Query().Get("round"); raw != "" {
		rd := models.Round(raw)
		if brackets.RoundIndex(rd) < 0 {
			badRequestResponse(w, r, errors.New("invalid round query parameter"))
			return
		}
		round = &rd
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResult godoc
// @Summary Внести результат матча
// @Tags matches
// @Description Оба счета обязательны. Победитель матча плей-офф проходит в следующий раунд, финал завершает турнир.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param input body services.SubmitResultInput true "Счет"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Матч уже сыгран или слот занят"
// @Failure 422 {object} map[string]string "Неполный счет или ничья в плей-офф"
// @Security BearerAuth
// @Router /matches/{matchID}/result [put]
func (h *MatchHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SubmitResult(r.Context(), actor, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Назначить корт или начать матч
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param input body services.UpdateMatchInput true "Корт и/или статус IN_PROGRESS"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /matches/{matchID} [patch]
func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), actor, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Cancel godoc
// @Summary Отменить матч зоны
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string "Матч плей-офф нельзя отменить"
// @Security BearerAuth
// @Router /matches/{matchID}/cancel [post]
func (h *MatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Cancel(r.Context(), actor, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
