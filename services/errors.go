package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrClubNotFound  = errors.New("club not found")
	ErrEventNotFound = errors.New("event not found")
	ErrMatchNotFound = errors.New("match not found")
	ErrNoEvents      = errors.New("no events found")

	// Ошибки валидации
	ErrClubNameRequired     = errors.New("club name is required")
	ErrEventNameRequired    = errors.New("event name is required")
	ErrUnsupportedEventType = errors.New("only knockout events are supported")
	ErrInvalidMinRest       = errors.New("min_rest must not be negative")
	ErrPlayerNameRequired   = errors.New("player name is required")
	ErrPlayerPhoneRequired  = errors.New("player phone is required")
	ErrInvalidPlayerAge     = errors.New("player age must be positive")
	ErrInvalidCSV           = errors.New("invalid CSV file")
	ErrInvalidScheduleInput = errors.New("invalid schedule parameters")
	ErrInvalidScore         = errors.New("scores must be non-negative and must not be equal")
	ErrUmpireRequired       = errors.New("assigned umpire is required")

	// Конфликты
	ErrClubNameConflict         = errors.New("club name already exists")
	ErrEventNameConflict        = errors.New("event name already exists")
	ErrPlayerDuplicateInEvent   = errors.New("player is already registered in this event")
	ErrFixturesAlreadyGenerated = errors.New("fixtures have already been generated for this event")
	ErrRoundAlreadyAdvanced     = errors.New("next round already exists, the result can no longer change")

	// Бизнес-правила сетки
	ErrInsufficientPlayers = errors.New("at least 2 players are required for a tournament")
	ErrNoPendingMatches    = errors.New("no pending matches found")
	ErrMatchIsBye          = errors.New("bye matches do not take a score")

	// Коды матчей и доступ судей
	ErrInvalidMatchCode    = errors.New("invalid match code")
	ErrMatchCodeExpired    = errors.New("match code has expired")
	ErrUmpireTokenMismatch = errors.New("umpire token was issued for another match")

	// Хранилище не подключено (DATABASE_URL не задан)
	ErrStoreNotConfigured = errors.New("database is not configured")
)
