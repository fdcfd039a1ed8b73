package controllers

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"scoreboard/internal/models"
	"scoreboard/internal/providers"
	"scoreboard/internal/rotation"
	"scoreboard/internal/services"
	"scoreboard/internal/structures"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const (
	maxRequestBodySize = 1 << 16
	logoFormField      = "logo"
	logoConvertTimeout = 30 * time.Second
)

type ApiController struct {
	logger  providers.Logger
	service services.ScoreboardServiceInterface
	cache   providers.CacheProviderInterface
	conf    *structures.Config
}

func NewApiController(logger providers.Logger, service services.ScoreboardServiceInterface, cache providers.CacheProviderInterface, conf *structures.Config) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
		conf:    conf,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type teamRequest struct {
	TeamID    int    `json:"teamId"`
	Score     int    `json:"score"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
	Direction int    `json:"direction"`
}

type clockRequest struct {
	Minutes any `json:"minutes"`
	Seconds any `json:"seconds"`
}

type periodRequest struct {
	Delta int `json:"delta"`
}

type orderRequest struct {
	IDs []int `json:"ids"`
}

type confirmRequest struct {
	Action  string `json:"action"`
	Confirm bool   `json:"confirm"`
}

type visibilityResponse struct {
	Corrected bool              `json:"corrected"`
	Time      int               `json:"time"`
	State     models.BoardState `json:"state"`
}

func stateCacheKey(version uint64) string {
	return "state:" + strconv.FormatUint(version, 10)
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (ac *ApiController) respond(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Error encoding response: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, gson)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, rotation.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrLogoTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrNotAnImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, rotation.ErrInvalidOrder),
		errors.Is(err, rotation.ErrUnsupportedRoster):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNothingToUndo),
		errors.Is(err, services.ErrEditMode),
		errors.Is(err, services.ErrNotEditing),
		errors.Is(err, services.ErrClockAtZero),
		errors.Is(err, rotation.ErrTeamNotOnIce),
		errors.Is(err, rotation.ErrGoalieCannotWin),
		errors.Is(err, rotation.ErrInvalidRoster):
		return http.StatusConflict
	case errors.Is(err, services.ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (ac *ApiController) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s failed: %s", r.Method, r.URL.Path, err)
	} else {
		ac.logger.Debugf(providers.GetLogTypeByRequestType(r.Method), "%s %s rejected: %s", r.Method, r.URL.Path, err)
	}
	ac.respond(w, status, errorResponse{Error: err.Error()})
}

// decode reads an optional JSON body; an empty body leaves dst zeroed.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return services.ErrInvalidInput
	}
	return nil
}

// serveState writes the current board, cached per version.
func (ac *ApiController) serveState(w http.ResponseWriter) {
	if data, ok := ac.cache.Get(stateCacheKey(ac.service.Version())); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	state := ac.service.State()
	gson, err := json.Marshal(state)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Error encoding state: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.cache.Set(stateCacheKey(state.Version), gson)
	writeJSON(w, http.StatusOK, gson)
}

// mutate runs op and answers with the resulting board.
func (ac *ApiController) mutate(w http.ResponseWriter, r *http.Request, op func() error) {
	if err := op(); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.serveState(w)
}

func (ac *ApiController) GetState(w http.ResponseWriter, r *http.Request) {
	ac.serveState(w)
}

func (ac *ApiController) Goal(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		return ac.service.Goal(req.TeamID)
	})
}

func (ac *ApiController) Timeout(w http.ResponseWriter, r *http.Request) {
	ac.mutate(w, r, ac.service.Timeout)
}

func (ac *ApiController) Undo(w http.ResponseWriter, r *http.Request) {
	ac.mutate(w, r, ac.service.Undo)
}

func (ac *ApiController) Period(w http.ResponseWriter, r *http.Request) {
	var req periodRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		switch req.Delta {
		case 1:
			return ac.service.IncrementPeriod()
		case -1:
			return ac.service.DecrementPeriod()
		default:
			return services.ErrInvalidInput
		}
	})
}

func (ac *ApiController) ToggleTimer(w http.ResponseWriter, r *http.Request) {
	ac.mutate(w, r, ac.service.ToggleTimer)
}

func (ac *ApiController) ResetTimer(w http.ResponseWriter, r *http.Request) {
	ac.mutate(w, r, ac.service.ResetTimer)
}

// wholeNumber reads a decimal integer from a JSON string or number. Strings
// are base 10 so zero-padded clock digits like "08" stay decimal; fractional
// numbers are rejected rather than truncated.
func wholeNumber(v any) (int, error) {
	switch n := v.(type) {
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, services.ErrInvalidInput
		}
		return cast.ToIntE(n)
	default:
		return cast.ToIntE(n)
	}
}

// clockFields coerces form-style values ("12", 12, 12.0) to ints.
func clockFields(req clockRequest) (int, int, error) {
	var minutes, seconds int
	var err error
	if req.Minutes != nil {
		if minutes, err = wholeNumber(req.Minutes); err != nil {
			return 0, 0, services.ErrInvalidInput
		}
	}
	if req.Seconds != nil {
		if seconds, err = wholeNumber(req.Seconds); err != nil {
			return 0, 0, services.ErrInvalidInput
		}
	}
	return minutes, seconds, nil
}

func (ac *ApiController) SetClock(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		if req.Minutes == nil || req.Seconds == nil {
			return services.ErrInvalidInput
		}
		minutes, seconds, err := clockFields(req)
		if err != nil {
			return err
		}
		return ac.service.SetClock(minutes, seconds)
	})
}

func (ac *ApiController) AdjustClock(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		minutes, seconds, err := clockFields(req)
		if err != nil {
			return err
		}
		if minutes != 0 {
			if err := ac.service.AdjustMinutes(minutes); err != nil {
				return err
			}
		}
		if seconds != 0 {
			return ac.service.AdjustSeconds(seconds)
		}
		return nil
	})
}

func (ac *ApiController) Visibility(w http.ResponseWriter, r *http.Request) {
	corrected, ok := ac.service.ResumeVisibility()
	ac.respond(w, http.StatusOK, visibilityResponse{
		Corrected: ok,
		Time:      corrected,
		State:     ac.service.State(),
	})
}

func (ac *ApiController) ToggleSound(w http.ResponseWriter, r *http.Request) {
	ac.mutate(w, r, ac.service.ToggleSound)
}

func (ac *ApiController) Edit(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		switch req.Action {
		case "begin":
			return ac.service.BeginEdit(req.Confirm)
		case "commit":
			return ac.service.CommitEdit()
		case "cancel":
			return ac.service.CancelEdit()
		default:
			return services.ErrInvalidInput
		}
	})
}

func (ac *ApiController) SetScore(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		return ac.service.SetScore(req.TeamID, req.Score)
	})
}

func (ac *ApiController) RenameTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		return ac.service.RenameTeam(req.TeamID, req.Name)
	})
}

// UploadLogo accepts a multipart image and converts it in the background.
// Displays pick up the new logo from the next state event.
func (ac *ApiController) UploadLogo(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("teamId")
	teamID, err := wholeNumber(raw)
	if err != nil {
		ac.fail(w, r, services.ErrInvalidInput)
		return
	}

	maxBytes := ac.conf.Logo.MaxBytes
	if maxBytes <= 0 {
		maxBytes = services.DefaultLogoMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+maxRequestBodySize)
	file, _, err := r.FormFile(logoFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ac.fail(w, r, services.ErrLogoTooLarge)
			return
		}
		ac.fail(w, r, services.ErrInvalidInput)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		ac.fail(w, r, services.ErrInvalidInput)
		return
	}
	if int64(len(data)) > maxBytes {
		ac.fail(w, r, services.ErrLogoTooLarge)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), logoConvertTimeout)
	done, err := ac.service.UploadLogo(ctx, teamID, data)
	if err != nil {
		cancel()
		ac.fail(w, r, err)
		return
	}
	go func() {
		defer cancel()
		<-done
	}()
	ac.respond(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (ac *ApiController) ReorderTeams(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		return ac.service.ReorderTeams(req.IDs)
	})
}

func (ac *ApiController) MoveTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		return ac.service.MoveTeam(req.TeamID, req.Position)
	})
}

func (ac *ApiController) SwapTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		return ac.service.SwapTeam(req.TeamID, req.Direction)
	})
}

func (ac *ApiController) NewGame(w http.ResponseWriter, r *http.Request) {
	ac.mutate(w, r, ac.service.StartNewGame)
}

func (ac *ApiController) ResetGame(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		return ac.service.ResetGame(req.Confirm)
	})
}

func (ac *ApiController) ResetTeamDefaults(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	ac.mutate(w, r, func() error {
		if err := decode(w, r, &req); err != nil {
			return err
		}
		return ac.service.ResetTeamDefaults(req.Confirm)
	})
}
