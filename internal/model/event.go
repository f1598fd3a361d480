package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
)

// Category 活動分類
type Category string

const (
	CategorySports  Category = "Sports"
	CategoryStudy   Category = "Study"
	CategoryArts    Category = "Arts"
	CategoryMusic   Category = "Music"
	CategoryHangout Category = "Hangout"
	CategoryOther   Category = "Other"
)

var Categories = []Category{
	CategorySports, CategoryStudy, CategoryArts, CategoryMusic, CategoryHangout, CategoryOther,
}

// IsValid 驗證分類是否有效
func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

// ParseCategory matches s against the enumeration ignoring case and returns
// the canonical spelling.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// EventStatus 活動狀態，僅供顯示
type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusFull      EventStatus = "full"
	EventStatusClosed    EventStatus = "closed"
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCompleted EventStatus = "completed"
)

// JoinDecision 主辦人對加入申請的決定
type JoinDecision string

const (
	JoinDecisionAccept  JoinDecision = "accept"
	JoinDecisionDecline JoinDecision = "decline"
)

func (d JoinDecision) IsValid() bool {
	return d == JoinDecisionAccept || d == JoinDecisionDecline
}

// Event 活動模型，參與者與加入申請直接存在同一筆紀錄
type Event struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	Title            string      `json:"title" db:"title"`
	Description      string      `json:"description" db:"description"`
	Category         Category    `json:"category" db:"category"`
	City             string      `json:"city" db:"city"`
	Date             time.Time   `json:"date" db:"date"`
	ParticipantLimit int         `json:"participant_limit" db:"participant_limit"`
	Tags             []string    `json:"tags" db:"tags"`
	HostID           uuid.UUID   `json:"host_id" db:"host_id"`
	Participants     []uuid.UUID `json:"participant_ids" db:"participants"`
	JoinRequests     []uuid.UUID `json:"join_request_ids" db:"join_requests"`
	Status           EventStatus `json:"status" db:"status"`
	Version          int         `json:"version" db:"version"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Tags = slices.Clone(e.Tags)
	c.Participants = slices.Clone(e.Participants)
	c.JoinRequests = slices.Clone(e.JoinRequests)
	return &c
}

func (e *Event) IsHost(userID uuid.UUID) bool {
	return e.HostID == userID
}

func (e *Event) IsParticipant(userID uuid.UUID) bool {
	return slices.Contains(e.Participants, userID)
}

func (e *Event) HasRequested(userID uuid.UUID) bool {
	return slices.Contains(e.JoinRequests, userID)
}

// IsFull 檢查名額是否已滿
func (e *Event) IsFull() bool {
	return len(e.Participants) >= e.ParticipantLimit
}

// RequestToJoin 將 userID 加入申請名單
func (e *Event) RequestToJoin(userID uuid.UUID) error {
	switch {
	case e.IsHost(userID):
		return fmt.Errorf("%w: you cannot join your own event", apperrors.ErrInvalidOperation)
	case e.IsParticipant(userID):
		return apperrors.ErrAlreadyMember
	case e.HasRequested(userID):
		return apperrors.ErrAlreadyRequested
	case e.ParticipantLimit > 0 && e.IsFull():
		return apperrors.ErrEventFull
	}
	e.JoinRequests = append(e.JoinRequests, userID)
	return nil
}

// Decide applies the host's decision on target's pending request. The caller
// must already be authorized as host.
func (e *Event) Decide(target uuid.UUID, decision JoinDecision) error {
	if !decision.IsValid() {
		return fmt.Errorf("%w: action must be accept or decline", apperrors.ErrInvalidInput)
	}
	if !e.HasRequested(target) {
		return apperrors.ErrNoSuchRequest
	}
	if decision == JoinDecisionAccept {
		// 先檢查名額再修改
		if e.IsFull() {
			return apperrors.ErrEventFull
		}
		if !e.IsParticipant(target) {
			e.Participants = append(e.Participants, target)
		}
	}
	e.JoinRequests = removeID(e.JoinRequests, target)
	return nil
}

// Leave removes userID from the participants. The host stays attached to
// their event; deleting it is the way out.
func (e *Event) Leave(userID uuid.UUID) error {
	if !e.IsParticipant(userID) {
		return apperrors.ErrNotAParticipant
	}
	if e.IsHost(userID) {
		return fmt.Errorf("%w: the host cannot leave their own event, delete it instead", apperrors.ErrInvalidOperation)
	}
	e.Participants = removeID(e.Participants, userID)
	return nil
}

// ApplyUpdate 套用白名單欄位；未提供的欄位維持原值
func (e *Event) ApplyUpdate(params UpdateEventParams) error {
	if params.IsEmpty() {
		return fmt.Errorf("%w: no updatable fields provided", apperrors.ErrInvalidInput)
	}

	next := e.Clone()
	if params.Title != nil {
		next.Title = strings.TrimSpace(*params.Title)
	}
	if params.Description != nil {
		next.Description = strings.TrimSpace(*params.Description)
	}
	if params.City != nil {
		next.City = strings.TrimSpace(*params.City)
	}
	if params.Category != nil {
		category, ok := ParseCategory(*params.Category)
		if !ok {
			return invalidCategory(*params.Category)
		}
		next.Category = category
	}
	if params.Date != nil {
		date, err := ParseEventDate(*params.Date)
		if err != nil {
			return err
		}
		next.Date = date
	}
	if params.ParticipantLimit != nil {
		next.ParticipantLimit = *params.ParticipantLimit
	}
	if params.Tags != nil {
		next.Tags = NormalizeTags(*params.Tags)
	}

	if err := validateEventFields(next.Title, next.Description, next.City, next.ParticipantLimit); err != nil {
		return err
	}

	*e = *next
	return nil
}

// CreateEventParams 建立活動參數，Date 保留原始字串由 service 驗證
type CreateEventParams struct {
	Title            string
	Description      string
	Category         string
	City             string
	Date             string
	ParticipantLimit int
	Tags             []string
}

// NewEvent validates params and builds an event hosted by hostID.
func NewEvent(hostID uuid.UUID, params CreateEventParams) (*Event, error) {
	title := strings.TrimSpace(params.Title)
	description := strings.TrimSpace(params.Description)
	city := strings.TrimSpace(params.City)
	if err := validateEventFields(title, description, city, params.ParticipantLimit); err != nil {
		return nil, err
	}
	category, ok := ParseCategory(params.Category)
	if !ok {
		return nil, invalidCategory(params.Category)
	}
	date, err := ParseEventDate(params.Date)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:               uuid.New(),
		Title:            title,
		Description:      description,
		Category:         category,
		City:             city,
		Date:             date,
		ParticipantLimit: params.ParticipantLimit,
		Tags:             NormalizeTags(params.Tags),
		HostID:           hostID,
		Participants:     []uuid.UUID{hostID},
		JoinRequests:     []uuid.UUID{},
		Status:           EventStatusOpen,
		Version:          1,
	}, nil
}

// UpdateEventParams nil 代表未提供該欄位
type UpdateEventParams struct {
	Title            *string
	Description      *string
	Category         *string
	City             *string
	Date             *string
	ParticipantLimit *int
	Tags             *[]string
}

func (p UpdateEventParams) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.City == nil &&
		p.Date == nil && p.ParticipantLimit == nil && p.Tags == nil
}

var eventDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseEventDate accepts RFC 3339 and the layouts an HTML date/datetime-local
// input submits. Values without a zone are taken as UTC.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", apperrors.ErrInvalidInput)
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q is not a valid timestamp", apperrors.ErrInvalidInput, s)
}

// NormalizeTags trims every tag and drops the empty ones; never returns nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func validateEventFields(title, description, city string, participantLimit int) error {
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	case description == "":
		return fmt.Errorf("%w: description is required", apperrors.ErrInvalidInput)
	case city == "":
		return fmt.Errorf("%w: city is required", apperrors.ErrInvalidInput)
	case participantLimit < 1:
		return fmt.Errorf("%w: participant limit must be at least 1", apperrors.ErrInvalidInput)
	}
	return nil
}

func invalidCategory(s string) error {
	return fmt.Errorf("%w: category %q must be one of Sports, Study, Arts, Music, Hangout, Other", apperrors.ErrInvalidInput, s)
}

func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// EventDetail 活動與已解析的使用者摘要
type EventDetail struct {
	*Event
	Host             *UserSummary  `json:"host,omitempty"`
	ParticipantUsers []UserSummary `json:"participants,omitempty"`
	JoinRequestUsers []UserSummary `json:"join_requests,omitempty"`
}

// MyEvents 使用者主辦與參加的活動
type MyEvents struct {
	Hosted        []*Event `json:"hosted"`
	Participating []*Event `json:"participating"`
}
