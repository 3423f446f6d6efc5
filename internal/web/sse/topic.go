package sse

import "github.com/mcoot/pokerleague/internal/model"

// Topic names a stream that clients subscribe to
type Topic string

const (
	// EventsTopic carries changes to the event list
	EventsTopic Topic = "events"
	// StandingsTopic carries changes to the league table
	StandingsTopic Topic = "standings"
)

// AdminTopic is the stream for an event's admin entries page
func AdminTopic(eventID model.EventID) Topic {
	return Topic("admin:" + string(eventID))
}

// EventTopic is the stream for an event's public page
func EventTopic(eventID model.EventID) Topic {
	return Topic("event:" + string(eventID))
}

// TopicFor maps an invalidated view onto the topic that renders it.
// The second return value is false for views with no stream.
func TopicFor(inv model.Invalidation) (Topic, bool) {
	switch inv.View {
	case model.ViewAdminEntries:
		if inv.EventID == "" {
			return "", false
		}
		return AdminTopic(inv.EventID), true
	case model.ViewPublicEvent:
		if inv.EventID == "" {
			return "", false
		}
		return EventTopic(inv.EventID), true
	case model.ViewEventList:
		return EventsTopic, true
	case model.ViewLeagueStandings:
		return StandingsTopic, true
	}
	return "", false
}
