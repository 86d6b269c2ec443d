package controllers

import (
	"errors"
	"net/http"

	"fitsyncd/internal/providers"
	"fitsyncd/internal/services"
	"fitsyncd/internal/syncer"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger    providers.Logger
	session   services.SessionServiceInterface
	schedules services.ScheduleServiceInterface
	workouts  services.WorkoutServiceInterface
	settings  services.SettingsServiceInterface
}

func NewApiController(logger providers.Logger, session services.SessionServiceInterface, schedules services.ScheduleServiceInterface, workouts services.WorkoutServiceInterface, settings services.SettingsServiceInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		session:   session,
		schedules: schedules,
		workouts:  workouts,
		settings:  settings,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

// writeServiceError maps service sentinels to HTTP statuses.
func (ac *ApiController) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrNotSignedIn):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrNeedsConnectivity):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, services.ErrSlotNotFound), errors.Is(err, syncer.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		ac.logger.Errorf(providers.TypeHttp, "Request failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Nickname string  `json:"nickname"`
	Height   float64 `json:"height"`
	Weight   float64 `json:"weight"`
}

func (ac *ApiController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := ac.session.Register(r.Context(), req.Email, req.Password, req.Nickname, req.Height, req.Weight)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": user.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ac *ApiController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := ac.session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":       user.ID,
		"email":    user.Email,
		"nickname": user.Nickname,
	})
}

func (ac *ApiController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ac.session.Logout(r.Context()); err != nil {
		ac.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (ac *ApiController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		http.Error(w, "new password is required", http.StatusBadRequest)
		return
	}

	if err := ac.session.ChangePassword(r.Context(), req.OldPassword, req.NewPassword); err != nil {
		ac.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetSchedule(w http.ResponseWriter, _ *http.Request) {
	if _, ok := ac.session.CurrentUser(); !ok {
		http.Error(w, services.ErrNotSignedIn.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": ac.schedules.List()})
}

type addWorkoutRequest struct {
	Day  string                  `json:"day"`
	Slot services.NewWorkoutSlot `json:"workout"`
}

func (ac *ApiController) AddScheduleWorkout(w http.ResponseWriter, r *http.Request) {
	var req addWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	slot, outcome, err := ac.schedules.AddWorkout(r.Context(), req.Day, req.Slot)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"workout": slot,
		"outcome": outcome.String(),
	})
}

func (ac *ApiController) DeleteScheduleWorkout(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	slotID := r.URL.Query().Get("id")
	if day == "" || slotID == "" {
		http.Error(w, "day and id query parameters are required", http.StatusBadRequest)
		return
	}

	outcome, err := ac.schedules.DeleteWorkout(r.Context(), day, slotID)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outcome": outcome.String()})
}

func (ac *ApiController) GetWorkouts(w http.ResponseWriter, _ *http.Request) {
	if _, ok := ac.session.CurrentUser(); !ok {
		http.Error(w, services.ErrNotSignedIn.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workouts": ac.workouts.List()})
}

func (ac *ApiController) AddWorkoutRecord(w http.ResponseWriter, r *http.Request) {
	var req services.NewWorkoutRecord
	if !decodeBody(w, r, &req) {
		return
	}

	record, outcome, err := ac.workouts.AddRecord(r.Context(), req)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"record":  record,
		"outcome": outcome.String(),
	})
}

func (ac *ApiController) GetSettings(w http.ResponseWriter, _ *http.Request) {
	if _, ok := ac.session.CurrentUser(); !ok {
		http.Error(w, services.ErrNotSignedIn.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, ac.settings.Get())
}

type updateSettingsRequest struct {
	Enabled bool `json:"enabled"`
}

func (ac *ApiController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	outcome, err := ac.settings.Update(r.Context(), req.Enabled)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled": req.Enabled,
		"outcome": outcome.String(),
	})
}
