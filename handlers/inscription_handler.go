package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/padel-manager/services"
)

type InscriptionHandler struct {
	inscriptionService services.InscriptionService
}

func NewInscriptionHandler(is services.InscriptionService) *InscriptionHandler {
	return &InscriptionHandler{inscriptionService: is}
}

// Register godoc
// @Summary Записаться на турнир
// @Tags inscriptions
// @Description Без partner_player_id создается индивидуальная заявка, с ним заявка пары.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.RegisterInscriptionInput false "Партнер"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Нет профиля игрока или регистрация закрыта"
// @Failure 409 {object} map[string]string "Уже записан или мест нет"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/inscriptions [post]
func (h *InscriptionHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterInscriptionInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	inscription, err := h.inscriptionService.Register(r.Context(), actor, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"inscription": inscription}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary Заявки турнира
// @Tags inscriptions
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/inscriptions [get]
func (h *InscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	inscriptions, err := h.inscriptionService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"inscriptions": inscriptions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Отменить заявку
// @Tags inscriptions
// @Param inscriptionID path int true "Inscription ID"
// @Success 204 "Заявка удалена"
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string "Регистрация уже закрыта"
// @Security BearerAuth
// @Router /inscriptions/{inscriptionID} [delete]
func (h *InscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	id, err := getIDFromURL(r, "inscriptionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.inscriptionService.Delete(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pair godoc
// @Summary Составить пару из индивидуальных заявок
// @Tags inscriptions
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.PairPlayersInput true "Игроки"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/pairs [post]
func (h *InscriptionHandler) Pair(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PairPlayersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Player1ID <= 0 || input.Player2ID <= 0 {
		badRequestResponse(w, r, errors.New("player1_id and player2_id are required"))
		return
	}

	inscription, err := h.inscriptionService.PairPlayers(r.Context(), actor, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"inscription": inscription}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
