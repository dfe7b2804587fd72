package followgraph

import "yumigo/models"

// ListState is the snapshot of cached lists a follow-status change
// operates on.
type ListState struct {
	Following []models.UserResponse
	Suggested []models.UserResponse
}

// ApplyFollowChange is the single list-surgery rule. Every call site
// that reacts to a follow-status change (the store's own mutations,
// changes broadcast from other sessions, the button) applies this same
// pure function, so the lists can never drift apart between call
// sites.
//
// Follow: the target enters Following (using known profile info when
// available, a bare placeholder otherwise) and leaves Suggested.
// Unfollow: the target leaves Following and re-enters Suggested at the
// front, preserving whatever cached profile info exists rather than
// re-fetching. Both directions are idempotent.
func ApplyFollowChange(state ListState, targetID string, isFollowing bool, known *models.UserResponse) ListState {
	next := ListState{
		Following: make([]models.UserResponse, 0, len(state.Following)+1),
		Suggested: make([]models.UserResponse, 0, len(state.Suggested)+1),
	}

	var cached *models.UserResponse
	for _, u := range state.Following {
		if u.ID == targetID {
			copied := u
			cached = &copied
			continue
		}
		next.Following = append(next.Following, u)
	}
	for _, u := range state.Suggested {
		if u.ID == targetID {
			if cached == nil {
				copied := u
				cached = &copied
			}
			continue
		}
		next.Suggested = append(next.Suggested, u)
	}

	if known == nil {
		known = cached
	}
	profile := models.UserResponse{ID: targetID}
	if known != nil {
		profile = *known
	}

	if isFollowing {
		next.Following = append(next.Following, profile)
	} else {
		next.Suggested = append([]models.UserResponse{profile}, next.Suggested...)
	}

	return next
}
