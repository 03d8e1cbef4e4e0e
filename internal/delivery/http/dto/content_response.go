package dto

import "time"

type DomainContentResponse struct {
	Domain string `json:"domain"`
	Items  any    `json:"items"`
	Empty  bool   `json:"empty"`
}

type EditorResponse struct {
	Domain    string `json:"domain"`
	Mode      string `json:"mode"`
	EditingID string `json:"editing_id,omitempty"`
	Draft     any    `json:"draft,omitempty"`
	Items     any    `json:"items"`
}

type SessionResponse struct {
	UserID    string                  `json:"user_id"`
	ActiveTab string                  `json:"active_tab"`
	Editors   map[string]EditorStatus `json:"editors"`
}

type EditorStatus struct {
	Mode      string `json:"mode"`
	EditingID string `json:"editing_id,omitempty"`
}

type SyncResponse struct {
	Trigger string              `json:"trigger"`
	At      time.Time           `json:"at"`
	Domains []DomainSyncSummary `json:"domains"`
}

type DomainSyncSummary struct {
	Domain string `json:"domain"`
	Result string `json:"result"`
	Items  int    `json:"items"`
	Error  string `json:"error,omitempty"`
}
