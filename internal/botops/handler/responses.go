package handler

type SendResponse struct {
	OK     bool   `json:"ok"`
	SentTo string `json:"sentTo"`
}

type RestartResponse struct {
	OK        bool `json:"ok"`
	Restarted bool `json:"restarted"`
}

// LogLine carries its timestamp as Unix milliseconds.
type LogLine struct {
	TS   int64  `json:"ts"`
	Text string `json:"text"`
}

type LogsResponse struct {
	OK   bool      `json:"ok"`
	Logs []LogLine `json:"logs"`
}
