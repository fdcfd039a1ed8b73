package models

// BoardState is the full snapshot served to clients.
type BoardState struct {
	Version      uint64 `json:"version"`
	Teams        Roster `json:"teams"`
	Period       int    `json:"period"`
	Minutes      int    `json:"minutes"`
	Seconds      int    `json:"seconds"`
	Time         int    `json:"time"`
	IsRunning    bool   `json:"isRunning"`
	SoundEnabled bool   `json:"soundEnabled"`
	EditMode     bool   `json:"editMode"`
	CanUndo      bool   `json:"canUndo"`
	HistorySize  int    `json:"historySize"`
}
