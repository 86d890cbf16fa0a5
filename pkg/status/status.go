// Package status defines the application lifecycle stages and the transition
// operation that keeps the status-history audit trail.
package status

import "github.com/hireflow/hireflow/pkg/model"

const (
	Submitted   model.ApplicationStatus = "application_submitted"
	UnderReview model.ApplicationStatus = "under_review"
	Shortlisted model.ApplicationStatus = "shortlisted"
	Interviewed model.ApplicationStatus = "interviewed"
	Hired       model.ApplicationStatus = "hired"
	Rejected    model.ApplicationStatus = "rejected"
	WaitingList model.ApplicationStatus = "waiting_list"

	// Legacy intermediate HR/manager stages, retained for rows written before
	// the enumeration was collapsed.
	ShortlistedForHR      model.ApplicationStatus = "shortlisted_for_hr"
	ShortlistedForManager model.ApplicationStatus = "shortlisted_for_manager"
	InterviewedByHR       model.ApplicationStatus = "interviewed_by_hr"
	InterviewedByManager  model.ApplicationStatus = "interviewed_by_manager"
)

var members = map[model.ApplicationStatus]struct{}{
	Submitted:             {},
	UnderReview:           {},
	Shortlisted:           {},
	Interviewed:           {},
	Hired:                 {},
	Rejected:              {},
	WaitingList:           {},
	ShortlistedForHR:      {},
	ShortlistedForManager: {},
	InterviewedByHR:       {},
	InterviewedByManager:  {},
}

// Old synonyms that never made it into the retained union fold onto the
// nearest canonical member.
var legacyAliases = map[string]model.ApplicationStatus{
	"submitted":      Submitted,
	"new":            Submitted,
	"in_review":      UnderReview,
	"reviewing":      UnderReview,
	"pending_review": UnderReview,
	"waitlisted":     WaitingList,
	"on_hold":        WaitingList,
	"selected":       Hired,
	"declined":       Rejected,
}

// Valid reports whether s is a member of the status union, legacy members
// included.
func Valid(s model.ApplicationStatus) bool {
	_, ok := members[s]
	return ok
}

// Canonicalize maps a raw status string onto the status union. Members map to
// themselves; known legacy synonyms fold onto their canonical member; anything
// else reports false.
func Canonicalize(raw string) (model.ApplicationStatus, bool) {
	s := model.ApplicationStatus(raw)
	if Valid(s) {
		return s, true
	}
	if mapped, ok := legacyAliases[raw]; ok {
		return mapped, true
	}
	return "", false
}

// NotifyKey folds a status onto the key used for notification-settings lookup.
// The legacy HR/manager stages notify under their nearest canonical stage.
func NotifyKey(s model.ApplicationStatus) model.ApplicationStatus {
	switch s {
	case ShortlistedForHR, ShortlistedForManager:
		return Shortlisted
	case InterviewedByHR, InterviewedByManager:
		return Interviewed
	default:
		return s
	}
}

// SettingsKey folds a raw status string onto the key notification settings
// are stored and looked up under. Writes and reads must agree on this key, so
// legacy synonyms and HR/manager stages land on the same canonical member.
func SettingsKey(raw string) (string, bool) {
	s, ok := Canonicalize(raw)
	if !ok {
		return "", false
	}
	return string(NotifyKey(s)), true
}

var notifiable = map[model.ApplicationStatus]struct{}{
	Hired:       {},
	Rejected:    {},
	WaitingList: {},
	Shortlisted: {},
	Interviewed: {},
}

// Notifiable reports whether a change to s may schedule a candidate
// notification, subject to the per-status setting.
func Notifiable(s model.ApplicationStatus) bool {
	_, ok := notifiable[NotifyKey(s)]
	return ok
}
