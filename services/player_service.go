package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/knockout-system/metrics"
	"github.com/Dosada05/knockout-system/models"
	"github.com/Dosada05/knockout-system/repositories"
	"github.com/Dosada05/knockout-system/storage"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
)

var csvRequiredColumns = []string{"name", "age", "phone", "club_id", "event_name"}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	// ListPlayers returns every player, or only the roster of eventID when it is not empty.
	ListPlayers(ctx context.Context, eventID string) ([]*models.Player, error)
	ImportCSV(ctx context.Context, filename string, data []byte) (*CSVImportResult, error)
}

type CreatePlayerInput struct {
	Name     string   `json:"name"`
	Age      int      `json:"age"`
	Phone    string   `json:"phone"`
	ClubID   string   `json:"club_id"`
	EventIDs []string `json:"event_ids"`
}

type CSVRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type CSVImportResult struct {
	TotalRows     int           `json:"total_rows"`
	ValidRows     int           `json:"valid_rows"`
	InvalidRows   int           `json:"invalid_rows"`
	InsertedCount int           `json:"inserted_count"`
	Errors        []CSVRowError `json:"errors"`
	ArchiveURL    string        `json:"archive_url,omitempty"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	clubRepo   repositories.ClubRepository
	eventRepo  repositories.EventRepository
	uploader   storage.FileUploader
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewPlayerService: uploader may be nil, CSV files are then not archived.
func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	clubRepo repositories.ClubRepository,
	eventRepo repositories.EventRepository,
	uploader storage.FileUploader,
	m *metrics.Metrics,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		clubRepo:   clubRepo,
		eventRepo:  eventRepo,
		uploader:   uploader,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	if phone == "" {
		return nil, ErrPlayerPhoneRequired
	}
	if input.Age <= 0 {
		return nil, ErrInvalidPlayerAge
	}

	if err := s.ensureClub(ctx, input.ClubID); err != nil {
		return nil, err
	}

	eventIDs := make([]string, 0, len(input.EventIDs))
	seen := make(map[string]bool, len(input.EventIDs))
	for _, id := range input.EventIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := getEvent(ctx, s.eventRepo, id); err != nil {
			return nil, err
		}
		exists, err := s.playerRepo.ExistsByNameInEvent(ctx, name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %q in event %s", ErrPlayerDuplicateInEvent, name, id)
		}
		eventIDs = append(eventIDs, id)
	}

	player := &models.Player{
		ID:       uuid.NewString(),
		Name:     name,
		Age:      input.Age,
		Phone:    phone,
		ClubID:   input.ClubID,
		EventIDs: eventIDs,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerClubInvalid):
			return nil, ErrClubNotFound
		case errors.Is(err, repositories.ErrPlayerEventInvalid):
			return nil, ErrEventNotFound
		default:
			return nil, fmt.Errorf("failed to create player: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "player created",
		slog.String("player_id", player.ID), slog.Int("events", len(eventIDs)))
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, eventID string) ([]*models.Player, error) {
	if eventID == "" {
		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list players: %w", err)
		}
		return players, nil
	}
	if !isUUID(eventID) {
		return []*models.Player{}, nil
	}
	players, err := s.playerRepo.ListByEvent(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of event %s: %w", eventID, err)
	}
	return players, nil
}

func (s *playerService) ensureClub(ctx context.Context, clubID string) error {
	if !isUUID(clubID) {
		return ErrClubNotFound
	}
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to get club %s: %w", clubID, err)
	}
	return nil
}

// ImportCSV registers one player per valid row. Rows are validated independently; a bad row is
// reported with its line number (header is line 1) and does not stop the import.
func (s *playerService) ImportCSV(ctx context.Context, filename string, data []byte) (*CSVImportResult, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, fmt.Errorf("%w: file must be CSV format", ErrInvalidCSV)
	}

	reader := csv.NewReader(bytes.NewReader(decodeCSV(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range csvRequiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column: %s", ErrInvalidCSV, col)
		}
	}

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	eventByName := make(map[string]*models.Event, len(events))
	for _, e := range events {
		eventByName[strings.ToLower(strings.TrimSpace(e.Name))] = e
	}

	result := &CSVImportResult{Errors: make([]CSVRowError, 0)}
	knownClubs := make(map[string]bool)
	// event id + lower-cased name of players accepted earlier in this file
	inFile := make(map[string]bool)

	for idx := 0; ; idx++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.TotalRows++
		row := idx + 2
		fail := func(format string, args ...interface{}) {
			result.InvalidRows++
			result.Errors = append(result.Errors, CSVRowError{Row: row, Error: fmt.Sprintf(format, args...)})
		}
		if err != nil {
			fail("%v", err)
			continue
		}

		field := func(col string) string {
			i := columns[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		name, ageRaw, phone, clubID, eventName := field("name"), field("age"), field("phone"), field("club_id"), field("event_name")
		if name == "" || ageRaw == "" || phone == "" || clubID == "" || eventName == "" {
			fail("Missing required fields")
			continue
		}

		age, err := strconv.Atoi(ageRaw)
		if err != nil || age <= 0 {
			fail("Invalid age %q", ageRaw)
			continue
		}

		event, ok := eventByName[strings.ToLower(eventName)]
		if !ok {
			fail("Event '%s' not found", eventName)
			continue
		}

		if !knownClubs[clubID] {
			if err := s.ensureClub(ctx, clubID); err != nil {
				if errors.Is(err, ErrClubNotFound) {
					fail("Club %s not found", clubID)
					continue
				}
				return nil, err
			}
			knownClubs[clubID] = true
		}

		dupKey := event.ID + "\x00" + strings.ToLower(name)
		duplicate := inFile[dupKey]
		if !duplicate {
			duplicate, err = s.playerRepo.ExistsByNameInEvent(ctx, name, event.ID)
			if err != nil {
				return nil, err
			}
		}
		if duplicate {
			fail("Player '%s' already registered in event '%s'", name, eventName)
			continue
		}

		player := &models.Player{
			ID:       uuid.NewString(),
			Name:     name,
			Age:      age,
			Phone:    phone,
			ClubID:   clubID,
			EventIDs: []string{event.ID},
		}
		if err := s.playerRepo.Create(ctx, nil, player); err != nil {
			s.logger.WarnContext(ctx, "csv row insert failed", slog.Int("row", row), slog.Any("error", err))
			fail("failed to insert player '%s'", name)
			continue
		}
		inFile[dupKey] = true
		result.ValidRows++
		result.InsertedCount++
	}

	s.metrics.CSVRows(result.ValidRows, result.InvalidRows)
	result.ArchiveURL = s.archive(ctx, filename, data)

	s.logger.InfoContext(ctx, "csv roster imported",
		slog.String("filename", filename),
		slog.Int("total_rows", result.TotalRows),
		slog.Int("inserted", result.InsertedCount),
		slog.Int("invalid_rows", result.InvalidRows))
	return result, nil
}

// archive keeps the raw upload in object storage. Failures are logged only, the import already happened.
func (s *playerService) archive(ctx context.Context, filename string, data []byte) string {
	if s.uploader == nil {
		return ""
	}
	key := storage.RosterArchiveKey(s.now(), filename)
	res, err := s.uploader.Upload(ctx, key, "text/csv", bytes.NewReader(data))
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive roster csv", slog.String("key", key), slog.Any("error", err))
		return ""
	}
	return res.Location
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeCSV accepts UTF-8 with or without BOM and falls back to Latin-1, which decodes any byte sequence.
func decodeCSV(data []byte) []byte {
	if trimmed := bytes.TrimPrefix(data, utf8BOM); utf8.Valid(trimmed) {
		return trimmed
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}
