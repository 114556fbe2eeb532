package calendar

import (
	"context"
	"fmt"
	"time"

	accountdomain "agendamail-backend/internal/account/domain"
	agendadomain "agendamail-backend/internal/agenda/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type TokenUpdateFunc = accountdomain.TokenUpdateFunc

type Service struct {
	clientID     string
	clientSecret string
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (s *Service) getCalendarService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*calendar.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	src := config.TokenSource(ctx, token)
	wrapped := &notifyTokenSource{src: src, current: token, callback: onTokenRefresh}
	client := oauth2.NewClient(ctx, wrapped)

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %v", err)
	}
	return srv, nil
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

// UpcomingEvents lists events on the primary calendar starting within the
// given window, expanded to single instances and ordered by start time.
func (s *Service) UpcomingEvents(ctx context.Context, accessToken, refreshToken string, window time.Duration, maxResults int64, onTokenRefresh TokenUpdateFunc) ([]agendadomain.CalendarEvent, error) {
	srv, err := s.getCalendarService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if maxResults <= 0 {
		maxResults = 50
	}

	resp, err := srv.Events.List("primary").
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.Add(window).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events: %v", err)
	}

	events := make([]agendadomain.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Status == "cancelled" {
			continue
		}
		events = append(events, ConvertCalendarEvent(item))
	}

	return events, nil
}

// ConvertCalendarEvent reshapes the upstream event into the connector's
// record
func ConvertCalendarEvent(item *calendar.Event) agendadomain.CalendarEvent {
	event := agendadomain.CalendarEvent{
		ID:       item.Id,
		Summary:  item.Summary,
		Location: item.Location,
	}

	if item.Start != nil {
		if item.Start.DateTime != "" {
			if start, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
				event.Start = &start
			}
		} else if item.Start.Date != "" {
			if start, err := time.Parse("2006-01-02", item.Start.Date); err == nil {
				event.Start = &start
				event.AllDay = true
			}
		}
	}

	for _, attendee := range item.Attendees {
		if attendee.Self {
			event.ResponseStatus = attendee.ResponseStatus
			break
		}
	}

	return event
}
