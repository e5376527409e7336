package domain

// Stage identifies a step of the run pipeline
type Stage string

const (
	StageBranching  Stage = "branching"
	StageMutating   Stage = "mutating"
	StageCommitting Stage = "committing"
	StagePushing    Stage = "pushing"
	StageRequesting Stage = "requesting"
	StageWaiting    Stage = "waiting"
	StageMerging    Stage = "merging"
	StageCleaningUp Stage = "cleaning_up"
)

// Stages lists all pipeline stages in execution order
var Stages = []Stage{
	StageBranching,
	StageMutating,
	StageCommitting,
	StagePushing,
	StageRequesting,
	StageWaiting,
	StageMerging,
	StageCleaningUp,
}

// RunState represents what the bot is doing right now
type RunState string

const (
	StateIdle    RunState = "idle"
	StateRunning RunState = "running"
)
