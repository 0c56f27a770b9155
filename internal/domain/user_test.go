package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_CanSeeTags(t *testing.T) {
	allow := &User{Permissions: UserPermissions{ItemTagsSelected: []string{"kids"}}}
	deny := &User{Permissions: UserPermissions{ItemTagsSelected: []string{"kids"}, SelectedTagsNotAccessible: true}}
	open := &User{Permissions: DefaultPermissions()}
	emptyList := &User{Permissions: UserPermissions{}}

	assert.True(t, allow.CanSeeTags([]string{"kids", "adventure"}))
	assert.False(t, allow.CanSeeTags([]string{"adventure"}))
	assert.False(t, deny.CanSeeTags([]string{"kids", "adventure"}))
	assert.True(t, deny.CanSeeTags(nil))
	assert.True(t, open.CanSeeTags([]string{"anything"}))
	assert.True(t, emptyList.CanSeeTags([]string{"anything"}))
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Type: UserTypeRoot}).IsAdmin())
	assert.True(t, (&User{Type: UserTypeAdmin}).IsAdmin())
	assert.False(t, (&User{Type: UserTypeUser}).IsAdmin())
}
