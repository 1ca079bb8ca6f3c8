package membership

import (
	"unicode/utf8"

	groupstore "github.com/dalemusser/studycircle/internal/app/store/groups"
	"github.com/dalemusser/studycircle/internal/app/system/apperr"
	"github.com/dalemusser/studycircle/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studycircle/internal/domain/models"
)

const (
	maxShortField = 200
	maxLongField  = 4000
)

// GroupInput carries the caller-supplied fields for create and edit.
type GroupInput struct {
	Name        string `json:"name"`
	Department  string `json:"department"`
	Course      string `json:"course"`
	CourseCode  string `json:"course_code"`
	Description string `json:"description"`
	Topics      string `json:"topics"`
	Schedule    string `json:"schedule"`
	Location    string `json:"location"`
	MaxMembers  int    `json:"max_members"`
	Private     bool   `json:"private"`
}

// validate strips markup, checks the required fields and the size bounds,
// and returns the store-ready info.
func (in GroupInput) validate() (groupstore.Info, error) {
	info := groupstore.Info{
		Name:        htmlsanitize.PlainText(in.Name),
		Department:  htmlsanitize.PlainText(in.Department),
		Course:      htmlsanitize.PlainText(in.Course),
		CourseCode:  htmlsanitize.PlainText(in.CourseCode),
		Description: htmlsanitize.PlainText(in.Description),
		Topics:      htmlsanitize.PlainText(in.Topics),
		Schedule:    htmlsanitize.PlainText(in.Schedule),
		Location:    htmlsanitize.PlainText(in.Location),
		MaxMembers:  in.MaxMembers,
		Private:     in.Private,
	}

	required := []struct{ label, value string }{
		{"name", info.Name},
		{"department", info.Department},
		{"course", info.Course},
		{"course code", info.CourseCode},
	}
	for _, f := range required {
		if f.value == "" {
			return groupstore.Info{}, apperr.Validation("%s is required", f.label)
		}
		if utf8.RuneCountInString(f.value) > maxShortField {
			return groupstore.Info{}, apperr.Validation("%s must be at most %d characters", f.label, maxShortField)
		}
	}
	for _, v := range []string{info.Description, info.Topics, info.Schedule, info.Location} {
		if utf8.RuneCountInString(v) > maxLongField {
			return groupstore.Info{}, apperr.Validation("text fields must be at most %d characters", maxLongField)
		}
	}
	if info.MaxMembers < models.GroupSizeMin || info.MaxMembers > models.GroupSizeMax {
		return groupstore.Info{}, apperr.Validation("max members must be between %d and %d",
			models.GroupSizeMin, models.GroupSizeMax)
	}
	return info, nil
}
