package interfaces

// SchedulerInterface is the lifecycle the application drives around the board:
// Restore before serving, Init once ready, Stop and Persist on shutdown.
type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}
