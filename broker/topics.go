package broker

const (
	UserEventsSubject = "user_events"
	TaskEventsSubject = "task_events"
)
