package model

// ProcessResult holds the final timing values of one terminated process.
type ProcessResult struct {
	ID             int `json:"id"`
	ArrivalTime    int `json:"arrival_time"`
	BurstTime      int `json:"burst_time"`
	StartTime      int `json:"start_time"`
	CompletionTime int `json:"completion_time"`
	WaitingTime    int `json:"waiting_time"`
	TurnaroundTime int `json:"turnaround_time"`
}

// Metrics summarises a finished run.
type Metrics struct {
	Processes         []ProcessResult `json:"processes"`
	AverageWaiting    float64         `json:"average_waiting"`
	AverageTurnaround float64         `json:"average_turnaround"`
	Utilization       float64         `json:"utilization"` // percent, 0..100
	TotalTicks        int             `json:"total_ticks"`
	BusyTicks         int             `json:"busy_ticks"`
	Cores             int             `json:"cores"`
	Quantum           int             `json:"quantum"`
}
