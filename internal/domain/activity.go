package domain

// Activity is an extracurricular activity students can sign up for.
type Activity struct {
	Name            string   `json:"-" db:"name"`
	Description     string   `json:"description" db:"description"`
	Schedule        string   `json:"schedule" db:"schedule"`
	MaxParticipants int      `json:"max_participants" db:"max_participants"`
	Participants    []string `json:"participants" db:"-"`
}

// IsFull reports whether no more participants can join.
func (a *Activity) IsFull() bool {
	return a.MaxParticipants > 0 && len(a.Participants) >= a.MaxParticipants
}

// HasParticipant reports whether email is already signed up.
func (a *Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}
