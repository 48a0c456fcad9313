package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp is a time.Time that travels on the wire as a zone-less UTC timestamp
// (2006-01-02T15:04:05). RFC3339 input is accepted as well.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(WireTimeLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseWireTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseWireTime parses the wire layout (interpreted as UTC) or RFC3339.
func ParseWireTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(WireTimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q; expected %s or RFC3339", s, WireTimeLayout)
	}
	return t.UTC(), nil
}

type UserView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ItemSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookerSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookingView is the booking as returned to API callers.
type BookingView struct {
	ID       int64         `json:"id"`
	Start    Timestamp     `json:"start"`
	End      Timestamp     `json:"end"`
	Status   BookingStatus `json:"status"`
	ItemID   int64         `json:"itemId"`
	Item     ItemSummary   `json:"item"`
	BookerID int64         `json:"bookerId"`
	Booker   BookerSummary `json:"booker"`
}

// BookingShort is the compact booking attached to item views as last/next.
type BookingShort struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    Timestamp `json:"start"`
	End      Timestamp `json:"end"`
}

type CommentView struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    Timestamp `json:"created"`
}

// ItemView is an item with its owner-only booking projection and comments.
type ItemView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	RequestID   *int64        `json:"requestId,omitempty"`
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
	Comments    []CommentView `json:"comments"`
}

// ItemAnswer is an item listed in reply to an item request.
type ItemAnswer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"ownerId"`
}

type ItemRequestView struct {
	ID          int64        `json:"id"`
	Description string       `json:"description"`
	Created     Timestamp    `json:"created"`
	Items       []ItemAnswer `json:"items"`
}

func NewUserView(u *User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}

func NewBookingView(b *Booking) BookingView {
	return BookingView{
		ID:       b.ID,
		Start:    NewTimestamp(b.Start),
		End:      NewTimestamp(b.End),
		Status:   b.Status,
		ItemID:   b.Item.ID,
		Item:     ItemSummary{ID: b.Item.ID, Name: b.Item.Name},
		BookerID: b.Booker.ID,
		Booker:   BookerSummary{ID: b.Booker.ID, Name: b.Booker.Name},
	}
}

func NewBookingViews(bookings []*Booking) []BookingView {
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, NewBookingView(b))
	}
	return views
}

// NewBookingShort returns nil for a nil booking.
func NewBookingShort(b *Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{
		ID:       b.ID,
		BookerID: b.Booker.ID,
		Start:    NewTimestamp(b.Start),
		End:      NewTimestamp(b.End),
	}
}

func NewCommentView(c *Comment) CommentView {
	return CommentView{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    NewTimestamp(c.Created),
	}
}

func NewCommentViews(comments []*Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, NewCommentView(c))
	}
	return views
}

// NewItemView builds the plain item view; projection fields are filled by the caller.
func NewItemView(i *Item) ItemView {
	return ItemView{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		RequestID:   i.RequestID,
		Comments:    []CommentView{},
	}
}

func NewItemAnswer(i *Item) ItemAnswer {
	return ItemAnswer{ID: i.ID, Name: i.Name, OwnerID: i.OwnerID}
}

func NewItemRequestView(r *ItemRequest, items []*Item) ItemRequestView {
	answers := make([]ItemAnswer, 0, len(items))
	for _, it := range items {
		answers = append(answers, NewItemAnswer(it))
	}
	return ItemRequestView{
		ID:          r.ID,
		Description: r.Description,
		Created:     NewTimestamp(r.Created),
		Items:       answers,
	}
}
