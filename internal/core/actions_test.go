package core_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-assistant/internal/core"
)

func TestMenuFor_EveryKnownRoleHasMenu(t *testing.T) {
	for _, role := range core.KnownRoles {
		assert.NotEmpty(t, core.MenuFor(role), "role %q", role)
	}
}

func TestMenuFor_UnknownRolesGetNothing(t *testing.T) {
	for _, role := range []core.Role{core.RoleUnknown, "", "contractor", "HR"} {
		assert.Empty(t, core.MenuFor(role), "role %q", role)
	}
}

func TestMenuFor_HROnlyActions(t *testing.T) {
	for _, role := range []core.Role{core.RoleEmployee, core.RoleNew} {
		menu := core.MenuFor(role)
		assert.True(t, menu.Contains(core.ActionMyPersonalInfo))
		assert.True(t, menu.Contains(core.ActionMyDocumentStatus))
		assert.False(t, menu.Contains(core.ActionAnyoneInformation))
		assert.False(t, menu.Contains(core.ActionApplicantCount))
	}
	hr := core.MenuFor(core.RoleHR)
	assert.True(t, hr.Contains(core.ActionAnyoneInformation))
	assert.True(t, hr.Contains(core.ActionApplicantCount))
}

func TestMenuFor_ReturnsCopy(t *testing.T) {
	menu := core.MenuFor(core.RoleHR)
	menu[0].Purpose = "changed"
	assert.NotEqual(t, "changed", core.MenuFor(core.RoleHR)[0].Purpose)
}

func TestActionMenu_MarshalJSONKeepsOrder(t *testing.T) {
	out, err := json.Marshal(core.MenuFor(core.RoleEmployee))
	require.NoError(t, err)
	assert.Equal(t,
		`{"get_my_personal_info":"Get the logged-in user's own core data.","check_my_document_status":"Check the logged-in user's own document submission status."}`,
		string(out))
}

func TestParseAction(t *testing.T) {
	a, ok := core.ParseAction("get_applicant_count")
	assert.True(t, ok)
	assert.Equal(t, core.ActionApplicantCount, a)

	_, ok = core.ParseAction("delete_everyone")
	assert.False(t, ok)
}
