package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chadspratt/do-again-list/internal/activity"
	apperrors "github.com/chadspratt/do-again-list/internal/errors"
	"github.com/chadspratt/do-again-list/internal/game"
	"github.com/chadspratt/do-again-list/internal/models"
)

// updateRequest is what the browser client posts. Datetime is the start
// time; an end uses EndDatetime, or now when it is absent.
type updateRequest struct {
	Action      string     `json:"action"`
	Datetime    *time.Time `json:"datetime"`
	EndDatetime *time.Time `json:"end_datetime"`
	NextTime    *time.Time `json:"next_time"`
	KillStreak  *int       `json:"kill_streak"`
}

type updateResponse struct {
	Success        bool            `json:"success"`
	Habit          models.Habit    `json:"event"`
	Game           models.Snapshot `json:"game"`
	GameMessages   []string        `json:"game_messages"`
	SpawnEnemy     *game.Encounter `json:"spawn_enemy"`
	HeroBuffs      []game.StatBuff `json:"hero_buffs"`
	PendingHeal    bool            `json:"pending_heal"`
	PendingFatigue bool            `json:"pending_fatigue"`
	NeverStarted   bool            `json:"never_started"`
}

func (s *Server) listEvents(c *gin.Context) {
	habits, err := s.svc.ListHabits(c.Request.Context(), s.owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	c.JSON(http.StatusOK, habits)
}

func (s *Server) createEvent(c *gin.Context) {
	var in activity.HabitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperrors.Validation("body", "%v", err))
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		fail(c, apperrors.Validation("title", "Title is required."))
		return
	}

	h, out, err := s.svc.CreateHabit(c.Request.Context(), s.owner(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"id":            h.ID,
		"game":          out.Character.Snapshot(),
		"game_messages": out.Messages,
	})
}

func (s *Server) updateEvent(c *gin.Context) {
	id, ok := s.ownedHabit(c)
	if !ok {
		return
	}
	req := updateRequest{Action: "end"}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("body", "%v", err))
		return
	}

	ctx := c.Request.Context()
	var out activity.Outcome
	var err error
	switch req.Action {
	case "start":
		out, err = s.svc.StartActivity(ctx, id, timeOrNow(req.Datetime))
	case "end":
		out, err = s.svc.EndActivity(ctx, id, timeOrNow(req.EndDatetime), activity.EndOptions{KillStreak: req.KillStreak})
	case "set_next":
		var h models.Habit
		if h, err = s.svc.SetNextActivity(ctx, id, req.NextTime); err == nil {
			out.Habit = h
			out.Character, err = s.svc.GetCharacter(ctx, h.OwnerID)
		}
	default:
		err = apperrors.Validation("action", "unknown action %q", req.Action)
	}
	if err != nil {
		fail(c, err)
		return
	}

	msgs := out.Messages
	if msgs == nil {
		msgs = []string{}
	}
	c.JSON(http.StatusOK, updateResponse{
		Success:        true,
		Habit:          out.Habit,
		Game:           out.Character.Snapshot(),
		GameMessages:   msgs,
		SpawnEnemy:     out.Encounter,
		HeroBuffs:      out.HeroBuffs,
		PendingHeal:    out.PendingHeal,
		PendingFatigue: out.PendingFatigue,
		NeverStarted:   out.NeverStarted,
	})
}

func (s *Server) deleteEvent(c *gin.Context) {
	id, ok := s.ownedHabit(c)
	if !ok {
		return
	}
	if err := s.svc.DeleteHabit(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) updateEventSettings(c *gin.Context) {
	id, ok := s.ownedHabit(c)
	if !ok {
		return
	}
	var patch activity.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, apperrors.Validation("body", "%v", err))
		return
	}

	ctx := c.Request.Context()
	h, err := s.svc.UpdateHabitSettings(ctx, id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	ch, err := s.svc.GetCharacter(ctx, h.OwnerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "event": h, "game": ch.Snapshot()})
}

func (s *Server) gameState(c *gin.Context) {
	ch, err := s.svc.GetCharacter(c.Request.Context(), s.owner(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ch.Snapshot())
}

func (s *Server) syncBattle(c *gin.Context) {
	var in game.SyncInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperrors.Validation("body", "%v", err))
		return
	}
	ch, msgs, err := s.svc.ApplyExternalSync(c.Request.Context(), s.owner(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "game": ch.Snapshot(), "game_messages": msgs})
}

// timeOrNow maps an absent timestamp to the zero time, which the service
// reads as now.
func timeOrNow(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// ownedHabit resolves the :id param to a habit of the request's owner. Other
// owners' habits are reported as missing.
func (s *Server) ownedHabit(c *gin.Context) (string, bool) {
	id := c.Param("id")
	h, err := s.svc.GetHabit(c.Request.Context(), id)
	if err == nil && h.OwnerID != s.owner(c) {
		err = apperrors.NotFound("habit", id)
	}
	if err != nil {
		fail(c, err)
		return "", false
	}
	return h.ID, true
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrConstraint):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
