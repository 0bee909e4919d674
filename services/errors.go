package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrInvalidRole        = errors.New("role must be player, club or coach")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrClubNameRequired   = errors.New("club name is required")
	ErrMalformedResult    = errors.New("malformed result: both scores are required and must be non-negative")

	// Ворота регистрации на турнир, в порядке проверки
	ErrAuthenticationRequired = errors.New("you must be logged in to register")
	ErrNoPlayerProfile        = errors.New("only players can register for a tournament")
	ErrAlreadyRegistered      = errors.New("player is already registered in this tournament")
	ErrPartnerRegistered      = errors.New("partner is already registered in this tournament")
	ErrRegistrationNotOpen    = errors.New("tournament registration is not open")
	ErrTournamentFull         = errors.New("tournament registration is full")

	ErrPartnerIsSelf = errors.New("partner must be a different player")

	// Ошибки конфликтов
	ErrUserEmailConflict = errors.New("email address is already in use")
	ErrClubNameConflict  = errors.New("club name is already in use")

	// Ошибки аутентификации и авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	ErrUserNotFound        = errors.New("user not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrClubNotFound        = errors.New("club not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrInscriptionNotFound = errors.New("inscription not found")
	ErrMatchNotFound       = errors.New("match not found")

	// Турниры
	ErrTournamentNameRequired            = errors.New("tournament name is required")
	ErrTournamentDatesRequired           = errors.New("tournament start and end dates are required")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCapacity         = errors.New("tournament needs room for at least two couples")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNotEditable             = errors.New("tournament can only be edited before it starts")

	// Зоны, сетка и матчи
	ErrNotEnoughCouples      = errors.New("at least two couples are needed to start play")
	ErrZonePhaseNotActive    = errors.New("tournament is not in the zone phase")
	ErrZonePhaseIncomplete   = errors.New("all zone matches must be finished before the bracket is generated")
	ErrBracketAlreadyExists  = errors.New("bracket already generated for this tournament")
	ErrMatchNotPlayable      = errors.New("match is not ready to be played")
	ErrMatchAlreadyFinished  = errors.New("match already has a final result")
	ErrTiedEliminationMatch  = errors.New("an elimination match cannot end in a tie")
	ErrBracketSlotConflict   = errors.New("next match slot already holds a different couple")
	ErrInvalidCourt          = errors.New("court must be a positive number")
	ErrInvalidMatchStatus    = errors.New("invalid match status")
	ErrMatchNotInTournament  = errors.New("match does not belong to this tournament")
	ErrInscriptionNotRemoval = errors.New("inscriptions can only be removed while registration is open")

	// Хранилище
	ErrStorageUnavailable = errors.New("file storage is not configured")
	ErrUnsupportedImage   = errors.New("unsupported image type")

	// Сбои хранилища данных
	ErrCouldNotLoad = errors.New("could not load data")
	ErrCouldNotSave = errors.New("could not save data")
)
