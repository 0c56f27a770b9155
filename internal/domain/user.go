package domain

import "slices"

// UserType is the account type of a user.
type UserType string

const (
	// UserTypeRoot is the server owner.
	UserTypeRoot UserType = "root"
	// UserTypeAdmin can manage the server.
	UserTypeAdmin UserType = "admin"
	// UserTypeUser is a regular listener.
	UserTypeUser UserType = "user"
	// UserTypeGuest is a read-only listener.
	UserTypeGuest UserType = "guest"
)

// UserPermissions controls which library content a user can see.
type UserPermissions struct {
	// CanAccessExplicitContent allows books flagged explicit.
	CanAccessExplicitContent bool `json:"can_access_explicit_content"`

	// AccessAllTags disables tag-based visibility entirely.
	AccessAllTags bool `json:"access_all_tags"`

	// ItemTagsSelected is the tag list used when AccessAllTags is false.
	ItemTagsSelected []string `json:"item_tags_selected,omitempty"`

	// SelectedTagsNotAccessible turns ItemTagsSelected into a deny-list.
	// When false the list is an allow-list.
	SelectedTagsNotAccessible bool `json:"selected_tags_not_accessible"`
}

// DefaultPermissions returns unrestricted content permissions.
func DefaultPermissions() UserPermissions {
	return UserPermissions{
		CanAccessExplicitContent: true,
		AccessAllTags:            true,
	}
}

// User is a library user whose permissions scope query results.
type User struct {
	Syncable
	Username    string          `json:"username"`
	Type        UserType        `json:"type"`
	Permissions UserPermissions `json:"permissions"`
}

// IsAdmin reports whether the user can administer the server.
func (u *User) IsAdmin() bool {
	return u.Type == UserTypeRoot || u.Type == UserTypeAdmin
}

// RestrictsTags reports whether tag visibility applies to the user.
func (u *User) RestrictsTags() bool {
	return !u.Permissions.AccessAllTags && len(u.Permissions.ItemTagsSelected) > 0
}

// CanSeeTags reports whether an item carrying tags is visible to the user.
func (u *User) CanSeeTags(tags []string) bool {
	if !u.RestrictsTags() {
		return true
	}
	matched := slices.ContainsFunc(tags, func(tag string) bool {
		return slices.Contains(u.Permissions.ItemTagsSelected, tag)
	})
	if u.Permissions.SelectedTagsNotAccessible {
		return !matched
	}
	return matched
}
