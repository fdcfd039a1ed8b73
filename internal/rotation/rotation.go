// Package rotation implements the king-of-the-ice roster transitions.
//
// A valid roster holds exactly four teams: one permanent goalie team that is
// always on ice, a defender, a challenger and one team waiting its turn. All
// transitions are pure: the input roster is never modified.
package rotation

import (
	"errors"
	"fmt"
	"scoreboard/internal/models"
)

const (
	RosterSize = 4

	GoalPoints     = 2
	SurvivalPoints = 1
	ShutoutPoints  = 2
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNotOnIce      = errors.New("team is not on ice")
	ErrGoalieCannotWin   = errors.New("goalie team cannot win a match")
	ErrInvalidRoster     = errors.New("invalid roster")
	ErrUnsupportedRoster = errors.New("unsupported roster size")
	ErrInvalidOrder      = errors.New("invalid team order")
)

// Validate checks the roster invariant.
func Validate(r models.Roster) error {
	if len(r) != RosterSize {
		return fmt.Errorf("%w: %d teams, want %d", ErrUnsupportedRoster, len(r), RosterSize)
	}

	seen := make(map[int]struct{}, len(r))
	var goalies, defenders, challengers, waiting int
	for _, t := range r {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate team id %d", ErrInvalidRoster, t.ID)
		}
		seen[t.ID] = struct{}{}

		switch {
		case t.IsGoalie:
			if !t.OnIce || t.IsChallenger {
				return fmt.Errorf("%w: goalie team %d must be on ice and never challenge", ErrInvalidRoster, t.ID)
			}
			goalies++
		case t.OnIce && t.IsChallenger:
			challengers++
		case t.OnIce:
			defenders++
		case t.IsChallenger:
			return fmt.Errorf("%w: waiting team %d is marked challenger", ErrInvalidRoster, t.ID)
		default:
			waiting++
		}
	}

	if goalies != 1 || defenders != 1 || challengers != 1 || waiting != 1 {
		return fmt.Errorf("%w: goalies=%d defenders=%d challengers=%d waiting=%d",
			ErrInvalidRoster, goalies, defenders, challengers, waiting)
	}
	return nil
}

// ApplyGoal resolves a match won by scoringTeamID. The scorer earns GoalPoints
// and defends, the other skaters on ice sit out and the waiting team challenges.
func ApplyGoal(r models.Roster, scoringTeamID int) (models.Roster, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}

	idx := r.Find(scoringTeamID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d", ErrTeamNotFound, scoringTeamID)
	}
	if !r[idx].OnIce {
		return nil, fmt.Errorf("%w: %d", ErrTeamNotOnIce, scoringTeamID)
	}
	if r[idx].IsGoalie {
		return nil, fmt.Errorf("%w: %d", ErrGoalieCannotWin, scoringTeamID)
	}

	out := r.Clone()
	for i := range out {
		t := &out[i]
		switch {
		case t.ID == scoringTeamID:
			t.Score += GoalPoints
			t.OnIce = true
			t.IsChallenger = false
		case t.IsGoalie:
			t.OnIce = true
		case t.OnIce:
			t.OnIce = false
			t.IsChallenger = false
		default:
			t.OnIce = true
			t.IsChallenger = true
		}
	}
	return out, nil
}

// ApplyTimeout resolves a scoreless match. The challenger survived and defends
// next with SurvivalPoints, the goalie team collects ShutoutPoints.
func ApplyTimeout(r models.Roster) (models.Roster, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}

	out := r.Clone()
	for i := range out {
		t := &out[i]
		switch {
		case t.IsGoalie:
			t.Score += ShutoutPoints
			t.OnIce = true
		case t.OnIce && t.IsChallenger:
			t.Score += SurvivalPoints
			t.IsChallenger = false
		case t.OnIce:
			t.OnIce = false
		default:
			t.OnIce = true
			t.IsChallenger = true
		}
	}
	return out, nil
}

// SetInitialOrder assigns slots from an explicit non-goalie order:
// defender, challenger, then waiting.
func SetInitialOrder(r models.Roster, order []int) (models.Roster, error) {
	if len(r) != RosterSize {
		return nil, fmt.Errorf("%w: %d teams, want %d", ErrUnsupportedRoster, len(r), RosterSize)
	}

	position := make(map[int]int, len(order))
	for i, id := range order {
		idx := r.Find(id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: unknown team %d", ErrInvalidOrder, id)
		}
		if r[idx].IsGoalie {
			return nil, fmt.Errorf("%w: goalie team %d cannot be ordered", ErrInvalidOrder, id)
		}
		if _, dup := position[id]; dup {
			return nil, fmt.Errorf("%w: team %d listed twice", ErrInvalidOrder, id)
		}
		position[id] = i
	}

	out := r.Clone()
	for i := range out {
		t := &out[i]
		if t.IsGoalie {
			continue
		}
		pos, ok := position[t.ID]
		if !ok {
			return nil, fmt.Errorf("%w: team %d missing from order", ErrInvalidOrder, t.ID)
		}
		t.OnIce = pos < 2
		t.IsChallenger = pos == 1
	}

	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentOrder lists non-goalie ids as defender, challenger, waiting.
// Teams in the same slot keep roster order.
func CurrentOrder(r models.Roster) []int {
	var defenders, challengers, waiting []int
	for _, t := range r {
		switch {
		case t.IsGoalie:
		case t.OnIce && t.IsChallenger:
			challengers = append(challengers, t.ID)
		case t.OnIce:
			defenders = append(defenders, t.ID)
		default:
			waiting = append(waiting, t.ID)
		}
	}
	order := append(defenders, challengers...)
	return append(order, waiting...)
}

// MoveTo moves a team to the given position of the current order (drag and drop).
func MoveTo(r models.Roster, teamID, position int) (models.Roster, error) {
	order := CurrentOrder(r)
	from := indexOf(order, teamID)
	if from < 0 {
		return nil, fmt.Errorf("%w: team %d is not in the rotation", ErrInvalidOrder, teamID)
	}
	if position < 0 || position >= len(order) {
		return nil, fmt.Errorf("%w: position %d out of range", ErrInvalidOrder, position)
	}

	order = append(order[:from], order[from+1:]...)
	order = append(order[:position], append([]int{teamID}, order[position:]...)...)
	return SetInitialOrder(r, order)
}

// Swap exchanges a team with its neighbour in the current order.
// A negative direction moves it up, a positive one down.
func Swap(r models.Roster, teamID, direction int) (models.Roster, error) {
	order := CurrentOrder(r)
	from := indexOf(order, teamID)
	if from < 0 {
		return nil, fmt.Errorf("%w: team %d is not in the rotation", ErrInvalidOrder, teamID)
	}

	to := from + 1
	if direction < 0 {
		to = from - 1
	}
	if to < 0 || to >= len(order) {
		return r.Clone(), nil
	}
	order[from], order[to] = order[to], order[from]
	return SetInitialOrder(r, order)
}

// ResetScores zeroes every score and restores the default slot order.
// Teams missing from the default order keep their slots.
func ResetScores(r models.Roster) models.Roster {
	out := r.Clone()
	for i := range out {
		out[i].Score = 0
	}
	if ordered, err := SetInitialOrder(out, models.DefaultOrder()); err == nil {
		return ordered
	}
	return out
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
