package domain

import "time"

// AttendanceList is a checklist of participants of an event, e.g. for
// collecting consent forms or noting daily presence
type AttendanceList struct {
	ID          string              `json:"id"`
	EventID     string              `json:"event_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Columns     []*AttendanceColumn `json:"columns"`
	CreatedAt   time.Time           `json:"created_at"`
	ModifiedAt  time.Time           `json:"modified_at"`
	DeletedAt   *time.Time          `json:"deleted_at,omitempty"`
}

// AttendanceColumn is one column of a list with its selectable choices
type AttendanceColumn struct {
	ID      string              `json:"id"`
	ListID  string              `json:"list_id"`
	Title   string              `json:"title"`
	Sort    int                 `json:"sort"`
	Choices []*AttendanceChoice `json:"choices"`
}

// AttendanceChoice is a selectable value inside a column
type AttendanceChoice struct {
	ID         string `json:"id"`
	ColumnID   string `json:"column_id"`
	Title      string `json:"title"`
	ShortTitle string `json:"short_title,omitempty"`
}

// AttendanceFillout is the cell of a participant in a column
type AttendanceFillout struct {
	ListID        string    `json:"list_id"`
	ParticipantID string    `json:"participant_id"`
	ColumnID      string    `json:"column_id"`
	ChoiceID      *string   `json:"choice_id,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	ModifiedAt    time.Time `json:"modified_at"`
}

// IsDeleted reports whether the list was soft deleted
func (l *AttendanceList) IsDeleted() bool {
	return l.DeletedAt != nil
}

// Column returns the column with the given ID or nil
func (l *AttendanceList) Column(id string) *AttendanceColumn {
	for _, c := range l.Columns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Choice returns the choice with the given ID or nil
func (c *AttendanceColumn) Choice(id string) *AttendanceChoice {
	for _, ch := range c.Choices {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}
