package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-manager/services"
)

type ZoneHandler struct {
	zoneService    services.ZoneService
	bracketService services.BracketService
}

func NewZoneHandler(zs services.ZoneService, bs services.BracketService) *ZoneHandler {
	return &ZoneHandler{
		zoneService:    zs,
		bracketService: bs,
	}
}

// StartZonePhase godoc
// @Summary Начать фазу зон
// @Tags zones
// @Description Закрывает регистрацию, делит пары на зоны и создает матчи каждый с каждым.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string "Недостаточно пар"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/zones [post]
func (h *ZoneHandler) StartZonePhase(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.zoneService.StartZonePhase(r.Context(), actor, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"zones": phase.Zones, "matches": phase.Matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Standings godoc
// @Summary Таблицы зон
// @Tags zones
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/standings [get]
func (h *ZoneHandler) Standings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.zoneService.Standings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracket godoc
// @Summary Сгенерировать сетку плей-офф
// @Tags zones
// @Description Доступно после завершения всех матчей зон. Лучшие пары каждой зоны попадают в сетку.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Сетка уже существует или зоны не доиграны"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [post]
func (h *ZoneHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(w, r)
	if actor == nil {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GenerateAndSaveBracket(r.Context(), actor, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
