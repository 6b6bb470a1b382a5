package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request, u core.User) {
	rs, err := s.svc.Reminders.List(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newReminderViews(rs)).Write(w)
}

func (s *Server) handleUpcomingReminders(w http.ResponseWriter, r *http.Request, u core.User) {
	rs, err := s.svc.Reminders.Upcoming(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newReminderViews(rs)).Write(w)
}

func (s *Server) handleMarkReminderSent(w http.ResponseWriter, r *http.Request, u core.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Reminders.MarkSent(r.Context(), u.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(messageView{Message: "reminder marked as sent"}).Write(w)
}
