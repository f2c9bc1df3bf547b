package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	errorvalues "github.com/awsmlife/habits/internal/error_values"
	"github.com/awsmlife/habits/internal/service"
	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/awsmlife/habits/pkg/httputil"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type CreateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

type UpdateHabitRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency"`
}

// LogCompletionRequest toggles one day of one habit. Completed defaults
// to true and Date to today when omitted.
type LogCompletionRequest struct {
	HabitID   string     `json:"habit_id"`
	Completed *bool      `json:"completed"`
	Date      *dates.Day `json:"date"`
}

type GetHabitsResponse struct {
	UserID string          `json:"uid"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Habits []*entity.Habit `json:"habits"`
}

type GetCompletionsResponse struct {
	HabitID     string              `json:"habit_id"`
	Completions []entity.Completion `json:"completions"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req RegisterRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("registering error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	user, err := s.userService.Register(ctx, &service.RegisterRequest{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUserExists):
			logger.Error("registering error: existed user")
			httputil.WriteErrorResponse(w, http.StatusConflict, "user with such name already exists", nil)
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("registering error: invalid credentials format")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid credentials format", err)
		default:
			logger.Error("registering error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during registration", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, map[string]any{
		"uid": user.ID.String(),
	})
	logger.Info("successful registration")
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req LoginRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("login error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	user, err := s.userService.Login(ctx, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("login error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user with such name doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongCredentials):
			logger.Error("login error: wrong password")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "invalid username or password", nil)
		default:
			logger.Error("login error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during login", nil)
		}
		return
	}
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		logger.Error("login error: generating token error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"uid":   user.ID.String(),
		"token": token,
	})
	logger.Info("successful login")
}

func (s *Server) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("account deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req DeleteAccountRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("account deletion error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	err = s.userService.DeleteAccount(ctx, uid, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("account deletion error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongCredentials):
			logger.Error("account deletion error: wrong password")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "wrong password", nil)
		default:
			logger.Error("account deletion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting account", nil)
		}
		return
	}
	httputil.WriteNoContent(w)
	logger.Info("account deleted")
}

func (s *Server) CreateHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create habit error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateHabitRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("create habit error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	habit, err := s.habitsService.CreateHabit(ctx, uid, &service.CreateHabitRequest{
		Name:        req.Name,
		Description: req.Description,
		Frequency:   entity.Frequency(req.Frequency),
	})
	if err != nil {
		s.writeHabitError(w, logger, "create habit", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, habit)
	logger.Info("habit created")
}

func (s *Server) GetHabits(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get habits error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*15)
	defer cancel()
	habits, err := s.habitsService.GetUserHabits(ctx, uid, service.PaginationOpts{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Error("getting habits list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting habits list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetHabitsResponse{
		UserID: uid.String(),
		Page:   page,
		Limit:  limit,
		Habits: habits,
	})
	logger.Info("habits provided")
}

func (s *Server) GetHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get habit error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("get habit error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	habit, err := s.habitsService.GetHabit(ctx, id, uid)
	if err != nil {
		s.writeHabitError(w, logger, "get habit", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, habit)
	logger.Info("habit provided")
}

func (s *Server) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("update habit error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update habit error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	var req UpdateHabitRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("update habit error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	patch := service.UpdateHabitRequest{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Frequency != nil {
		freq := entity.Frequency(*req.Frequency)
		patch.Frequency = &freq
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	habit, err := s.habitsService.UpdateHabit(ctx, id, uid, &patch)
	if err != nil {
		s.writeHabitError(w, logger, "update habit", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, habit)
	logger.Info("habit updated")
}

func (s *Server) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("habit deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("habit deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	err = s.habitsService.DeleteHabit(ctx, id, uid)
	if err != nil {
		s.writeHabitError(w, logger, "habit deletion", err)
		return
	}
	httputil.WriteNoContent(w)
	logger.Info("habit deleted")
}

func (s *Server) LogCompletion(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("log completion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req LogCompletionRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("log completion error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	habitID, err := uuid.Parse(req.HabitID)
	if err != nil {
		logger.Error("log completion error: invalid habit id")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id", nil)
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}
	var day dates.Day
	if req.Date != nil {
		day = *req.Date
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	habit, err := s.ledgerService.SetCompletion(ctx, habitID, uid, day, completed)
	if err != nil {
		s.writeHabitError(w, logger, "log completion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, habit)
	logger.Info("completion logged", slog.String("habit_id", habitID.String()))
}

func (s *Server) BulkLogCompletions(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("bulk log error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var rawIDs []string
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&rawIDs); err != nil {
		logger.Error("bulk log error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			logger.Error("bulk log error: invalid habit id in batch", slog.String("habit_id", raw))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in batch", nil)
			return
		}
		ids = append(ids, id)
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*30)
	defer cancel()
	result, err := s.ledgerService.BulkSetCompletion(ctx, uid, ids)
	if err != nil {
		logger.Error("bulk log error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while bulk logging", nil)
		return
	}
	if len(result.Skipped) > 0 {
		logger.Warn("bulk log skipped unknown habits", slog.Int("skipped", len(result.Skipped)))
	}
	httputil.WriteJSONResponse(w, http.StatusOK, result)
	logger.Info("bulk log finished", slog.Int("updated", len(result.Habits)))
}

func (s *Server) GetCompletions(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get completions error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("get completions error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	var from, to dates.Day
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = dates.Parse(raw); err != nil {
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid from date", err)
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = dates.Parse(raw); err != nil {
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid to date", err)
			return
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	completions, err := s.ledgerService.GetCompletions(ctx, id, uid, from, to)
	if err != nil {
		s.writeHabitError(w, logger, "get completions", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetCompletionsResponse{
		HabitID:     id.String(),
		Completions: completions,
	})
	logger.Info("completions provided")
}

func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get stats error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*15)
	defer cancel()
	summary, err := s.statsService.GetStats(ctx, uid)
	if err != nil {
		logger.Error("getting stats error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting stats", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, summary)
	logger.Info("stats provided")
}

func (s *Server) SeedHabits(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("seed error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*15)
	defer cancel()
	seeded, err := s.habitsService.SeedDefaults(ctx, uid)
	if err != nil {
		logger.Error("seed error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while seeding habits", nil)
		return
	}
	message := "data already exists"
	if seeded {
		message = "sample data created"
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"message": message})
	logger.Info("seed finished")
}

// writeHabitError maps service sentinels onto HTTP statuses; a habit
// owned by someone else deliberately reads as not found.
func (s *Server) writeHabitError(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	switch {
	case errors.Is(err, errorvalues.ErrHabitNotFound), errors.Is(err, errorvalues.ErrWrongOwner):
		logger.Error(action + " error: unexist habit")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "habit doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrUserNotFound):
		logger.Error(action + " error: unexist user")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrHabitExists):
		logger.Error(action + " error: duplicate habit name")
		httputil.WriteErrorResponse(w, http.StatusConflict, "habit with this name already exists", nil)
	case errors.Is(err, errorvalues.ErrNothingToUpdate):
		logger.Error(action + " error: empty patch")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "no update data provided", nil)
	case errors.Is(err, errorvalues.ErrDateInFuture):
		logger.Error(action + " error: future date")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "completion date is in the future", nil)
	case errors.Is(err, errorvalues.ErrDateTooOld):
		logger.Error(action + " error: date outside backfill window")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "completion date is too far in the past", nil)
	case errors.Is(err, errorvalues.ErrValidation):
		logger.Error(action + " error: validation failed")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "validation failed", err)
	default:
		logger.Error(action+" error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error", nil)
	}
}
