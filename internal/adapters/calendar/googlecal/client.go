package googlecal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"safedose-api/internal/platform/httpclient"
	"safedose-api/internal/platform/logger"
	"safedose-api/internal/ports/calendar"
)

const (
	DefaultBaseURL      = "https://www.googleapis.com/calendar/v3"
	DefaultCalendarName = "MediBuddy App"
	DefaultTimeZone     = "Asia/Kolkata"

	// MockToken devuelve un evento falso sin tocar la red (flujo de desarrollo del frontend).
	MockToken = "mock_token"

	primaryCalendar = "primary"
	eventDuration   = time.Hour
	medicalColorID  = "11"
)

var (
	ErrInvalidInput = errors.New("invalid calendar input")
	ErrUpstream     = errors.New("google calendar upstream error")
)

type Config struct {
	BaseURL      string
	CalendarName string
	TimeZone     string
	Timeout      time.Duration
	Transport    http.RoundTripper
}

// Client habla Google Calendar v3 REST con el access token del usuario.
type Client struct {
	http         *httpclient.Client
	calendarName string
	loc          *time.Location
	tzName       string
	log          logger.Logger
}

var _ calendar.Calendar = (*Client)(nil)

func New(cfg Config, log logger.Logger) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	name := strings.TrimSpace(cfg.CalendarName)
	if name == "" {
		name = DefaultCalendarName
	}
	tz := strings.TrimSpace(cfg.TimeZone)
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tz, err)
	}
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout, httpclient.WithTransport(cfg.Transport))
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		http:         hc,
		calendarName: name,
		loc:          loc,
		tzName:       tz,
		log:          log.With(map[string]any{"component": "googlecal"}),
	}, nil
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type reminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type reminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []reminderOverride `json:"overrides"`
}

type eventBody struct {
	Summary     string    `json:"summary"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
	Reminders   reminders `json:"reminders"`
	ColorID     string    `json:"colorId"`
}

type eventResponse struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

func (c *Client) CreateEvent(ctx context.Context, accessToken string, in calendar.EventInput) (calendar.Event, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(in.Date)+" "+strings.TrimSpace(in.Time), c.loc)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("%w: date/time: %v", ErrInvalidInput, err)
	}

	if strings.TrimSpace(accessToken) == MockToken {
		return calendar.Event{
			ID:   "mock_event_id_12345",
			Link: "https://calendar.google.com/calendar/r/eventedit?text=Mock+Appointment",
		}, nil
	}

	calID := c.calendarID(ctx, accessToken, true)
	body := c.buildEvent(in, start)

	var out eventResponse
	path := "/calendars/" + url.PathEscape(calID) + "/events"
	if err := c.http.DoJSON(ctx, http.MethodPost, path, httpclient.Bearer(accessToken), body, &out); err != nil {
		return calendar.Event{}, fmt.Errorf("%w: insert event: %v", ErrUpstream, err)
	}
	return calendar.Event{ID: out.ID, Link: out.HTMLLink}, nil
}

func (c *Client) buildEvent(in calendar.EventInput, start time.Time) eventBody {
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = "Medical Clinic"
	}
	whatsapp := strings.TrimSpace(in.WhatsApp)
	if whatsapp == "" {
		whatsapp = "N/A"
	}

	desc := fmt.Sprintf("Appointment with Dr. %s\nPatient: %s\nEmail: %s\nWhatsApp: %s",
		in.DoctorName, in.PatientName, in.PatientEmail, whatsapp)

	const layout = "2006-01-02T15:04:05"
	return eventBody{
		Summary:     "Doctor Appointment - " + in.DoctorName,
		Location:    location,
		Description: desc,
		Start:       eventTime{DateTime: start.Format(layout), TimeZone: c.tzName},
		End:         eventTime{DateTime: start.Add(eventDuration).Format(layout), TimeZone: c.tzName},
		Reminders: reminders{
			UseDefault: false,
			Overrides: []reminderOverride{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 60},
			},
		},
		ColorID: medicalColorID,
	}
}

type calendarListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// calendarID busca el calendario dedicado; con create=true lo crea si no existe.
// Ante cualquier error usa "primary".
func (c *Client) calendarID(ctx context.Context, token string, create bool) string {
	headers := httpclient.Bearer(token)

	pageToken := ""
	for {
		path := "/users/me/calendarList"
		if pageToken != "" {
			path += "?pageToken=" + url.QueryEscape(pageToken)
		}
		var list calendarListResponse
		if err := c.http.DoJSON(ctx, http.MethodGet, path, headers, nil, &list); err != nil {
			c.log.Warn("calendar list failed, using primary", map[string]any{"error": err})
			return primaryCalendar
		}
		for _, item := range list.Items {
			if item.Summary == c.calendarName || item.Summary == "MediBuddy" {
				return item.ID
			}
		}
		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}
	if !create {
		return primaryCalendar
	}

	var created struct {
		ID string `json:"id"`
	}
	in := map[string]string{"summary": c.calendarName, "timeZone": c.tzName}
	if err := c.http.DoJSON(ctx, http.MethodPost, "/calendars", headers, in, &created); err != nil || created.ID == "" {
		c.log.Warn("calendar create failed, using primary", map[string]any{"error": err})
		return primaryCalendar
	}
	c.log.Info("created dedicated calendar", map[string]any{"calendar_id": created.ID})
	return created.ID
}

// DeleteEvent borra del calendario dedicado (o primary). 404/410 cuentan como ya borrado.
func (c *Client) DeleteEvent(ctx context.Context, accessToken, eventID string) error {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return fmt.Errorf("%w: event id required", ErrInvalidInput)
	}
	if strings.TrimSpace(accessToken) == MockToken {
		return nil
	}

	calID := c.calendarID(ctx, accessToken, false)
	path := "/calendars/" + url.PathEscape(calID) + "/events/" + url.PathEscape(eventID)
	err := c.http.DoJSON(ctx, http.MethodDelete, path, httpclient.Bearer(accessToken), nil, nil)
	if err == nil || httpclient.IsStatus(err, http.StatusNotFound) || httpclient.IsStatus(err, http.StatusGone) {
		return nil
	}
	return fmt.Errorf("%w: delete event: %v", ErrUpstream, err)
}
