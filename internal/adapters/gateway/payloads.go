package gateway

import (
	"time"

	"github.com/betterpursue/sproom/internal/domain/account"
	"github.com/betterpursue/sproom/internal/domain/activity"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

// The backend has shipped several shapes for the same records over time
// (flat vs nested activity references, string vs numeric ids, name vs title).
// The payload types absorb all of them; domain types only see the canonical
// form.

type userPayload struct {
	ID       registration.FlexID `json:"id"`
	Username string              `json:"username"`
	Nickname string              `json:"nickname"`
	Email    string              `json:"email"`
	Phone    string              `json:"phone"`
	RealName string              `json:"realName"`
	Role     string              `json:"role"`
}

func (p *userPayload) toDomain() account.User {
	return account.User{
		ID:       p.ID.Int64(),
		Username: p.Username,
		Nickname: p.Nickname,
		Email:    p.Email,
		Phone:    p.Phone,
		RealName: p.RealName,
		Role:     p.Role,
	}
}

type activityPayload struct {
	ID                  registration.FlexID `json:"id"`
	Name                string              `json:"name"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Location            string              `json:"location"`
	ImageURL            string              `json:"imageUrl"`
	Type                string              `json:"type"`
	StartTime           time.Time           `json:"startTime"`
	EndTime             time.Time           `json:"endTime"`
	MaxParticipants     *int                `json:"maxParticipants"`
	CurrentParticipants int                 `json:"currentParticipants"`
	Status              string              `json:"status"`
}

func (p *activityPayload) toDomain() activity.Activity {
	name := p.Name
	if name == "" {
		name = p.Title
	}
	return activity.Activity{
		ID:                  p.ID.Int64(),
		Name:                name,
		Description:         p.Description,
		Location:            p.Location,
		ImageURL:            p.ImageURL,
		Type:                p.Type,
		StartTime:           p.StartTime,
		EndTime:             p.EndTime,
		MaxParticipants:     p.MaxParticipants,
		CurrentParticipants: p.CurrentParticipants,
		Status:              p.Status,
	}
}

type registrationPayload struct {
	ID            registration.FlexID       `json:"id"`
	UserID        registration.FlexID       `json:"userId"`
	User          *userPayload              `json:"user"`
	ActivityID    registration.FlexID       `json:"activityId"`
	ActivityIDAlt registration.FlexID       `json:"activity_id"`
	Activity      *registration.ActivityRef `json:"activity"`
	Status        string                    `json:"status"`
	Notes         string                    `json:"notes"`
	CreatedAt     time.Time                 `json:"createdAt"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

func (p *registrationPayload) toDomain() registration.Registration {
	userID := p.UserID.Int64()
	if userID == 0 && p.User != nil {
		userID = p.User.ID.Int64()
	}
	flat := p.ActivityID.Int64()
	if flat == 0 {
		flat = p.ActivityIDAlt.Int64()
	}
	return registration.Registration{
		ID:         p.ID.Int64(),
		UserID:     userID,
		ActivityID: flat,
		Activity:   p.Activity,
		Status:     p.Status,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type commentPayload struct {
	ID        registration.FlexID `json:"id"`
	Content   string              `json:"content"`
	User      *userPayload        `json:"user"`
	CreatedAt time.Time           `json:"createdAt"`
}

func (p *commentPayload) toDomain() activity.Comment {
	c := activity.Comment{
		ID:        p.ID.Int64(),
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}
	if p.User != nil {
		u := p.User.toDomain()
		c.UserID = u.ID
		c.UserName = u.DisplayName()
	}
	return c
}
