package domain

// Event names pushed to live subscribers and callback channels.
const (
	EventTaskCreated      = "task_created"
	EventTaskUpdate       = "task_update"
	EventTaskTitleUpdated = "task_title_updated"
	EventTaskCompleted    = "task_completed"
	EventTaskFailed       = "task_failed"
	EventTaskDeleted      = "task_deleted"
)
