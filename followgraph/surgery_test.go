package followgraph

import (
	"testing"

	"yumigo/models"
)

func userResp(id, username string) models.UserResponse {
	return models.UserResponse{ID: id, Username: username}
}

func containsUser(list []models.UserResponse, id string) bool {
	for _, u := range list {
		if u.ID == id {
			return true
		}
	}
	return false
}

func TestApplyFollowChangeMovesTargetBetweenLists(t *testing.T) {
	state := ListState{
		Suggested: []models.UserResponse{userResp("a", "alice"), userResp("b", "bob")},
	}

	next := ApplyFollowChange(state, "a", true, nil)

	if !containsUser(next.Following, "a") {
		t.Error("expected target in following after follow")
	}
	if containsUser(next.Suggested, "a") {
		t.Error("expected target removed from suggested after follow")
	}
	if !containsUser(next.Suggested, "b") {
		t.Error("unrelated suggested entry must survive")
	}
}

func TestApplyFollowChangePreservesCachedProfileOnUnfollow(t *testing.T) {
	state := ListState{
		Following: []models.UserResponse{{ID: "a", Username: "alice", RecipeCount: 7}},
		Suggested: []models.UserResponse{userResp("b", "bob")},
	}

	next := ApplyFollowChange(state, "a", false, nil)

	if containsUser(next.Following, "a") {
		t.Error("expected target removed from following after unfollow")
	}
	if len(next.Suggested) != 2 || next.Suggested[0].ID != "a" {
		t.Fatalf("expected target reinserted at the front of suggested, got %v", next.Suggested)
	}
	if next.Suggested[0].Username != "alice" || next.Suggested[0].RecipeCount != 7 {
		t.Error("cached profile info must be preserved, not replaced by a placeholder")
	}
}

func TestApplyFollowChangeUsesKnownProfileOverPlaceholder(t *testing.T) {
	known := userResp("x", "xavier")
	next := ApplyFollowChange(ListState{}, "x", true, &known)

	if len(next.Following) != 1 || next.Following[0].Username != "xavier" {
		t.Fatalf("expected known profile used, got %v", next.Following)
	}
}

func TestApplyFollowChangeIsIdempotent(t *testing.T) {
	state := ListState{
		Suggested: []models.UserResponse{userResp("a", "alice")},
	}

	once := ApplyFollowChange(state, "a", true, nil)
	twice := ApplyFollowChange(once, "a", true, nil)

	count := 0
	for _, u := range twice.Following {
		if u.ID == "a" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one following entry after repeated follow, got %d", count)
	}

	unfollowOnce := ApplyFollowChange(twice, "a", false, nil)
	unfollowTwice := ApplyFollowChange(unfollowOnce, "a", false, nil)

	count = 0
	for _, u := range unfollowTwice.Suggested {
		if u.ID == "a" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one suggested entry after repeated unfollow, got %d", count)
	}
}

func TestApplyFollowChangeDoesNotMutateInput(t *testing.T) {
	state := ListState{
		Following: []models.UserResponse{userResp("a", "alice")},
		Suggested: []models.UserResponse{userResp("b", "bob")},
	}

	ApplyFollowChange(state, "a", false, nil)
	ApplyFollowChange(state, "b", true, nil)

	if len(state.Following) != 1 || state.Following[0].ID != "a" {
		t.Error("input following list was mutated")
	}
	if len(state.Suggested) != 1 || state.Suggested[0].ID != "b" {
		t.Error("input suggested list was mutated")
	}
}
