package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAttributes(t *testing.T) {
	attrs, err := MapAttributes(map[string]json.RawMessage{
		AttrWorkflowType:      json.RawMessage(`"OrderWorkflow"`),
		AttrGlobalVersion:     json.RawMessage(`3`),
		AttrExecutingStateIDs: json.RawMessage(`["Charge","Ship"]`),
		"CustomerTier":        json.RawMessage(`"gold"`),
	})
	require.NoError(t, err)

	assert.True(t, attrs.IsStateWorkflow())
	assert.Equal(t, "OrderWorkflow", attrs.WorkflowType)
	assert.Equal(t, int64(3), attrs.GlobalVersion)
	assert.Equal(t, []string{"Charge", "Ship"}, attrs.ExecutingStateIDs)
	assert.Equal(t, []string{"CustomerTier"}, attrs.CustomKeys())
	assert.JSONEq(t, `"gold"`, string(attrs.Custom["CustomerTier"]))
}

func TestMapAttributesWithoutTypeIndicator(t *testing.T) {
	attrs, err := MapAttributes(map[string]json.RawMessage{"Other": json.RawMessage(`1`)})
	require.NoError(t, err)
	assert.False(t, attrs.IsStateWorkflow())

	attrs, err = MapAttributes(nil)
	require.NoError(t, err)
	assert.False(t, attrs.IsStateWorkflow())
}

func TestMapAttributesMalformed(t *testing.T) {
	_, err := MapAttributes(map[string]json.RawMessage{
		AttrGlobalVersion: json.RawMessage(`"three"`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), AttrGlobalVersion)
}
