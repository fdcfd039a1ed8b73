package models

// Built-in logo references. User uploads replace them with data URIs;
// both are opaque strings to the game logic.
const (
	LogoRats    = "/rats-jersey.png"
	LogoGinkos  = "/ginkos-jersey.png"
	LogoSweet   = "/sweet-jersey.png"
	LogoGoalies = "/goalies-mask.png"
)

type Team struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Logo         string `json:"logo"`
	Score        int    `json:"score"`
	OnIce        bool   `json:"onIce"`
	IsChallenger bool   `json:"isChallenger"`
	IsGoalie     bool   `json:"isGoalie,omitempty"`
}

// IsDefender reports whether the team holds the defending on-ice slot.
func (t Team) IsDefender() bool {
	return t.OnIce && !t.IsChallenger && !t.IsGoalie
}

// IsWaiting reports whether the team is off the ice waiting for its turn.
func (t Team) IsWaiting() bool {
	return !t.OnIce && !t.IsGoalie
}

// Roster is the ordered team list. Order is display order only.
type Roster []Team

// Clone returns a deep copy. Team holds only value fields.
func (r Roster) Clone() Roster {
	if r == nil {
		return nil
	}
	out := make(Roster, len(r))
	copy(out, r)
	return out
}

func (r Roster) Equal(other Roster) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Find returns the index of the team with the given id or -1.
func (r Roster) Find(id int) int {
	for i := range r {
		if r[i].ID == id {
			return i
		}
	}
	return -1
}

func (r Roster) Goalie() (Team, bool) {
	for _, t := range r {
		if t.IsGoalie {
			return t, true
		}
	}
	return Team{}, false
}

// DefaultRoster is the roster a fresh game starts with:
// Ginkos defending, Rats challenging, Sweet-N-Low waiting.
func DefaultRoster() Roster {
	return Roster{
		{ID: 1, Name: "Rats", Logo: LogoRats, OnIce: true, IsChallenger: true},
		{ID: 2, Name: "Ginkos", Logo: LogoGinkos, OnIce: true},
		{ID: 3, Name: "Sweet-N-Low", Logo: LogoSweet},
		{ID: 4, Name: "Goalies", Logo: LogoGoalies, OnIce: true, IsGoalie: true},
	}
}

// DefaultOrder is the non-goalie id order of DefaultRoster: defender, challenger, waiting.
func DefaultOrder() []int {
	return []int{2, 1, 3}
}
