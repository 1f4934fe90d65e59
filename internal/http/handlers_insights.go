package http

import (
	"net/http"

	"finpulse/internal/insights"
)

// feed fetches the upstream insight feed, cached per TTL. A nil feed
// source yields an empty feed so the dashboard degrades instead of
// erroring.
func (s *Server) feedSnapshot(r *http.Request) (insights.Feed, error) {
	if s.feed == nil {
		return insights.Feed{}, nil
	}

	const key = "feed"
	if cached, found := s.feedCache.Get(key); found {
		return cached, nil
	}

	feed, err := s.feed.Insights(r.Context())
	if err != nil {
		return insights.Feed{}, err
	}
	s.feedCache.Set(key, feed)
	return feed, nil
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	feed, err := s.feedSnapshot(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if s.dismissals != nil {
		feed.Anomalies = insights.FilterDismissed(feed.Anomalies, s.dismissals.Keys())
	}
	if feed.BudgetAlerts == nil {
		feed.BudgetAlerts = []insights.BudgetAlert{}
	}
	if feed.Anomalies == nil {
		feed.Anomalies = []insights.Anomaly{}
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	feed, err := s.feedSnapshot(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if s.dismissals != nil {
		feed.Anomalies = insights.FilterDismissed(feed.Anomalies, s.dismissals.Keys())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": insights.MergeFeed(feed),
	})
}

type dismissRequest struct {
	Anomaly insights.Anomaly `json:"anomaly"`
}

func (s *Server) handleDismissAnomaly(w http.ResponseWriter, r *http.Request) {
	if s.dismissals == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "dismissals unavailable"})
		return
	}

	var req dismissRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	if req.Anomaly.Date.IsZero() {
		badRequest(w, "anomaly date is required")
		return
	}

	key := insights.DismissalKey(req.Anomaly)
	if err := s.dismissals.Add(key); err != nil {
		writeError(w, err)
		return
	}
	// Served feeds are filtered at read time, so cached copies stay valid.
	writeJSON(w, http.StatusOK, map[string]any{"dismissed": key})
}
