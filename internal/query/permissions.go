package query

import "github.com/listenupapp/listenup-library/internal/domain"

// Media table aliases used by the store.
const (
	BookAlias    = "b"
	PodcastAlias = "p"
)

// PermissionPredicates returns the restrictions that always apply to user on
// the media table aliased as alias. They only ever narrow a result set.
// A nil user is a system caller and is not restricted.
func PermissionPredicates(user *domain.User, alias string) []Predicate {
	if user == nil {
		return nil
	}

	var preds []Predicate
	if !user.Permissions.CanAccessExplicitContent {
		preds = append(preds, IsFalse(alias+".explicit"))
	}
	if user.RestrictsTags() {
		tags := user.Permissions.ItemTagsSelected
		if user.Permissions.SelectedTagsNotAccessible {
			preds = append(preds, ArrayContainsNone(alias+".tags", tags))
		} else {
			preds = append(preds, ArrayContainsAny(alias+".tags", tags))
		}
	}
	return preds
}
