package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directEntry(mapping string) *ServiceEntry {
	return &ServiceEntry{Name: mapping, OktaGroupMapping: mapping}
}

func gatewayEntry(hostname string) *ServiceEntry {
	return &ServiceEntry{Name: hostname, Hostname: hostname}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		groupName string
		want      Family
		wantErr   bool
	}{
		{"aws sso prefix", "APP_AWS_SSO_PAYROLL", FamilyDirect, false},
		{"twingate prefix", "APP_TG_billing.internal", FamilyGateway, false},
		{"unknown prefix", "APP_GITHUB_ADMINS", "", true},
		{"aws sso prefix without separator", "APP_AWS_SSOX", "", true},
		{"empty name", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			family, err := Classify(tt.groupName)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnclassified)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, family)
		})
	}
}

func TestFindFirstMatch_Direct(t *testing.T) {
	docs := []*Document{
		{AWSServices: []*ServiceEntry{
			directEntry("APP_AWS_SSO_BILLING"),
			directEntry("APP_AWS_SSO_PAYROLL"),
		}},
	}

	t.Run("exact key match", func(t *testing.T) {
		entry := FindFirstMatch(docs, "APP_AWS_SSO_PAYROLL")
		require.NotNil(t, entry)
		assert.Equal(t, "APP_AWS_SSO_PAYROLL", entry.OktaGroupMapping)
	})

	t.Run("no partial key match", func(t *testing.T) {
		assert.Nil(t, FindFirstMatch(docs, "APP_AWS_SSO_PAY"))
	})
}

func TestFindFirstMatch_Gateway(t *testing.T) {
	docs := []*Document{
		{TwingateServices: []*ServiceEntry{
			gatewayEntry("billing.internal"),
			gatewayEntry("db.internal"),
		}},
	}

	t.Run("hostname remainder match", func(t *testing.T) {
		entry := FindFirstMatch(docs, "APP_TG_billing.internal")
		require.NotNil(t, entry)
		assert.Equal(t, "billing.internal", entry.Hostname)
	})

	t.Run("hostname containing underscores", func(t *testing.T) {
		withUnderscore := []*Document{
			{TwingateServices: []*ServiceEntry{gatewayEntry("legacy_db.internal")}},
		}
		entry := FindFirstMatch(withUnderscore, "APP_TG_legacy_db.internal")
		require.NotNil(t, entry)
		assert.Equal(t, "legacy_db.internal", entry.Hostname)
	})

	t.Run("hostname mismatch", func(t *testing.T) {
		assert.Nil(t, FindFirstMatch(docs, "APP_TG_other.internal"))
	})
}

func TestFindFirstMatch_OrderAndDuplicates(t *testing.T) {
	first := directEntry("APP_AWS_SSO_DUP")
	first.AccessRules = &AccessRules{
		AutoApproval: &AutoApproval{
			SystemOwners: &PolicyBlock{Enabled: true},
		},
	}
	duplicate := directEntry("APP_AWS_SSO_DUP")

	t.Run("first match wins within a document", func(t *testing.T) {
		docs := []*Document{{AWSServices: []*ServiceEntry{first, duplicate}}}
		entry := FindFirstMatch(docs, "APP_AWS_SSO_DUP")
		require.NotNil(t, entry)
		assert.True(t, entry.SystemOwners().Enabled)
	})

	t.Run("matches across concatenated documents", func(t *testing.T) {
		docs := []*Document{
			{AWSServices: []*ServiceEntry{directEntry("APP_AWS_SSO_OTHER")}},
			{AWSServices: []*ServiceEntry{first}},
		}
		entry := FindFirstMatch(docs, "APP_AWS_SSO_DUP")
		require.NotNil(t, entry)
		assert.True(t, entry.SystemOwners().Enabled)
	})

	t.Run("empty document set", func(t *testing.T) {
		assert.Nil(t, FindFirstMatch(nil, "APP_AWS_SSO_DUP"))
	})
}

func TestGroupNameForEntry(t *testing.T) {
	assert.Equal(t, "APP_TG_billing.internal", GroupNameForEntry(FamilyGateway, gatewayEntry("billing.internal")))
	assert.Equal(t, "APP_AWS_SSO_PAYROLL", GroupNameForEntry(FamilyDirect, directEntry("APP_AWS_SSO_PAYROLL")))
}

func TestServiceEntryPolicyAccessors(t *testing.T) {
	t.Run("missing nesting yields zero values", func(t *testing.T) {
		entry := &ServiceEntry{OktaGroupMapping: "APP_AWS_SSO_X"}
		assert.False(t, entry.NonSensitiveAccess().Enabled)
		assert.Empty(t, entry.NonSensitiveAccess().OktaGroups)
		assert.False(t, entry.SystemOwners().Enabled)
		assert.False(t, entry.EmergencyAccess().Enabled)
	})

	t.Run("populated blocks pass through", func(t *testing.T) {
		entry := &ServiceEntry{
			AccessRules: &AccessRules{
				AutoApproval: &AutoApproval{
					NonSensitiveAccess: &PolicyBlock{
						Enabled:    true,
						OktaGroups: []string{"Engineering"},
						OktaUsers:  []string{"alice@example.com"},
					},
				},
				EmergencyAccess: &PolicyBlock{Enabled: true},
			},
		}
		assert.True(t, entry.NonSensitiveAccess().Enabled)
		assert.Equal(t, []string{"Engineering"}, entry.NonSensitiveAccess().OktaGroups)
		assert.True(t, entry.EmergencyAccess().Enabled)
		assert.False(t, entry.SystemOwners().Enabled)
	})

	t.Run("nil entry is safe", func(t *testing.T) {
		var entry *ServiceEntry
		assert.False(t, entry.NonSensitiveAccess().Enabled)
	})
}
