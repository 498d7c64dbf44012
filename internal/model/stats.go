package model

import "time"

// Stats aggregates the dashboard numbers
type Stats struct {
	Total       int
	ByStatus    map[Status]int
	ByProgress  map[Progress]int
	Other       int // rows whose status is not one of Statuses
	TotalReward float64
	Overdue     int
}

// Active is a shortcut for the dashboard's headline card
func (s Stats) Active() int { return s.ByStatus[StatusActive] }

// Completed is a shortcut for the dashboard's headline card
func (s Stats) Completed() int { return s.ByStatus[StatusCompleted] }

// ComputeStats aggregates projects as of now
func ComputeStats(projects []Project, now time.Time) Stats {
	s := Stats{
		Total:      len(projects),
		ByStatus:   make(map[Status]int, len(Statuses)),
		ByProgress: make(map[Progress]int, len(Progresses)),
	}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, pr := range Progresses {
		s.ByProgress[pr] = 0
	}

	for i := range projects {
		p := &projects[i]
		if _, ok := s.ByStatus[p.Status]; ok {
			s.ByStatus[p.Status]++
		} else {
			s.Other++
		}
		if _, ok := s.ByProgress[p.Progress]; ok {
			s.ByProgress[p.Progress]++
		}
		s.TotalReward += p.EstimatedReward
		if p.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}
